package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/fentz26/n3dash/internal/notify"
	"github.com/fentz26/n3dash/internal/store"
	"github.com/golang-jwt/jwt/v5"
)

type fakeAPI struct {
	loginStatus    int
	registerStatus int
	registerBody   string
	token          string
	logins         int
	registers      int
}

func (f *fakeAPI) handler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	switch r.URL.Path {
	case "/auth/login":
		f.logins++
		if f.loginStatus != 0 && f.loginStatus != http.StatusOK {
			w.WriteHeader(f.loginStatus)
			w.Write([]byte(`{"detail":"Invalid credentials"}`))
			return
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		json.NewEncoder(w).Encode(map[string]any{
			"status_code": 200,
			"detail":      "Login successful",
			"data": map[string]string{
				"user_id":      body["username"],
				"nickname":     "Kim",
				"department":   "솔루션팀",
				"access_token": f.token,
			},
		})
	case "/auth/register":
		f.registers++
		if f.registerStatus != 0 {
			w.WriteHeader(f.registerStatus)
			w.Write([]byte(f.registerBody))
			return
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"status_code":201,"detail":"created","data":null}`))
	default:
		http.NotFound(w, r)
	}
}

func newTestSession(t *testing.T, f *fakeAPI, opts ...Option) (*Store, *api.Client, *notify.Center) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(f.handler))
	t.Cleanup(srv.Close)

	client := api.NewClient(srv.URL)
	center := notify.NewCenter(time.Minute)
	t.Cleanup(center.Close)
	return New(client, center, opts...), client, center
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	return token
}

func lastToast(c *notify.Center) notify.Toast {
	toasts := c.Toasts()
	if len(toasts) == 0 {
		return notify.Toast{}
	}
	return toasts[len(toasts)-1]
}

func TestLogin_Success(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	f := &fakeAPI{token: signedToken(t, exp)}
	s, client, center := newTestSession(t, f)

	if err := s.Login(context.Background(), "u1", "password1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	st := s.State()
	if st.User == nil || st.User.UserID != "u1" || st.User.Nickname != "Kim" {
		t.Fatalf("Unexpected user: %+v", st.User)
	}
	if st.User.Department != models.DepartmentSolutionTeam {
		t.Errorf("Expected department to be parsed, got %q", st.User.Department)
	}
	if st.User.ExpiresAt == nil || !st.User.ExpiresAt.Equal(exp) {
		t.Errorf("Expected expiry from token claims, got %v", st.User.ExpiresAt)
	}
	if st.Loading || st.Error != "" {
		t.Errorf("Expected clean state, got %+v", st)
	}
	if client.Token() != f.token {
		t.Error("Expected bearer token to be installed on the client")
	}
	if toast := lastToast(center); toast.Kind != notify.KindSuccess {
		t.Errorf("Expected success toast, got %+v", toast)
	}
}

func TestLogin_Unauthorized(t *testing.T) {
	f := &fakeAPI{loginStatus: http.StatusUnauthorized}
	s, client, center := newTestSession(t, f)

	err := s.Login(context.Background(), "u1", "wrong-pass")
	if err == nil {
		t.Fatal("Expected login error")
	}

	st := s.State()
	if st.User != nil {
		t.Errorf("Expected no user after failed login, got %+v", st.User)
	}
	if st.Error != MsgLoginFailed {
		t.Errorf("Expected fixed error message, got %q", st.Error)
	}
	if client.Token() != "" {
		t.Error("Expected no token after failed login")
	}
	if toast := lastToast(center); toast.Kind != notify.KindError || toast.Message != MsgLoginFailed {
		t.Errorf("Expected error toast, got %+v", toast)
	}
}

func TestSignup_LogsInOnSuccess(t *testing.T) {
	f := &fakeAPI{token: "opaque-token"}
	s, _, _ := newTestSession(t, f)

	err := s.Signup(context.Background(), "new-user", "Lee", "password1", models.DepartmentCloudAI)
	if err != nil {
		t.Fatalf("Signup failed: %v", err)
	}
	if f.registers != 1 || f.logins != 1 {
		t.Errorf("Expected one register and one login, got %d/%d", f.registers, f.logins)
	}
	user := s.User()
	if user == nil || user.UserID != "new-user" {
		t.Fatalf("Expected session for new-user, got %+v", user)
	}
	if user.ExpiresAt != nil {
		t.Errorf("Expected no expiry for opaque token, got %v", user.ExpiresAt)
	}
}

func TestSignup_ErrorMessagePriority(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"detail wins", `{"detail":"User exists","data":{"errors":[{"field":"username","message":"taken"}]}}`, "User exists"},
		{"field error with label", `{"detail":"","data":{"errors":[{"label":"ID","field":"username","message":"taken"}]}}`, "ID: taken"},
		{"field error without label", `{"data":{"errors":[{"field":"username"}]}}`, "username: " + MsgSignupFailed},
		{"bare field error", `{"data":{"errors":[{"message":"bad"}]}}`, "input: bad"},
		{"fallback", `{}`, MsgSignupFailed},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			f := &fakeAPI{registerStatus: http.StatusBadRequest, registerBody: c.body}
			s, _, center := newTestSession(t, f)

			if err := s.Signup(context.Background(), "u", "n", "password1", models.DepartmentUndefined); err == nil {
				t.Fatal("Expected signup error")
			}
			if got := s.State().Error; got != c.want {
				t.Errorf("Expected %q, got %q", c.want, got)
			}
			if f.logins != 0 {
				t.Error("Expected no login attempt after failed signup")
			}
			if toast := lastToast(center); toast.Kind != notify.KindError {
				t.Errorf("Expected error toast, got %+v", toast)
			}
		})
	}
}

func TestLogout_RevokesToken(t *testing.T) {
	f := &fakeAPI{token: "tok"}
	s, client, center := newTestSession(t, f)
	s.Login(context.Background(), "u1", "password1")

	s.Logout()

	if s.Authenticated() {
		t.Error("Expected no session after logout")
	}
	if client.Token() != "" {
		t.Error("Expected token to be revoked")
	}
	if toast := lastToast(center); toast.Kind != notify.KindInfo || toast.Message != MsgLoggedOut {
		t.Errorf("Expected info toast, got %+v", toast)
	}
}

func TestRestore_FromStore(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer st.Close()

	f := &fakeAPI{token: signedToken(t, time.Now().Add(time.Hour))}
	first, _, _ := newTestSession(t, f, WithPersister(st))
	if err := first.Login(context.Background(), "u1", "password1"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	second, client, _ := newTestSession(t, f, WithPersister(st))
	ok, err := second.Restore(context.Background())
	if err != nil || !ok {
		t.Fatalf("Expected restored session, got ok=%v err=%v", ok, err)
	}
	if second.User().UserID != "u1" || client.Token() != f.token {
		t.Errorf("Expected restored identity and token, got %+v", second.User())
	}

	second.Logout()
	third, _, _ := newTestSession(t, f, WithPersister(st))
	if ok, _ := third.Restore(context.Background()); ok {
		t.Error("Expected no session to restore after logout")
	}
}

func TestRestore_DropsExpiredSession(t *testing.T) {
	st, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer st.Close()

	f := &fakeAPI{token: signedToken(t, time.Now().Add(time.Hour))}
	first, _, _ := newTestSession(t, f, WithPersister(st))
	first.Login(context.Background(), "u1", "password1")

	later := func() time.Time { return time.Now().Add(2 * time.Hour) }
	second, client, _ := newTestSession(t, f, WithPersister(st), WithClock(later))
	ok, err := second.Restore(context.Background())
	if err != nil || ok {
		t.Fatalf("Expected expired session to be dropped, got ok=%v err=%v", ok, err)
	}
	if client.Token() != "" {
		t.Error("Expected no token for expired session")
	}
	if _, err := st.LoadSession(context.Background()); err != store.ErrNoSession {
		t.Errorf("Expected expired session to be deleted, got %v", err)
	}
}
