package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fentz26/n3dash/internal/models"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE:  runLogin,
}

var signupCmd = &cobra.Command{
	Use:   "signup",
	Short: "Create an account and sign in",
	RunE:  runSignup,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and forget the session",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE:  runWhoami,
}

var (
	userID       string
	userPassword string
	userNickname string
	userDept     string
)

func init() {
	loginCmd.Flags().StringVar(&userID, "id", "", "User id (required)")
	loginCmd.Flags().StringVar(&userPassword, "password", "", "Password (or N3DASH_PASSWORD)")
	loginCmd.MarkFlagRequired("id")

	signupCmd.Flags().StringVar(&userID, "id", "", "User id (required)")
	signupCmd.Flags().StringVar(&userNickname, "nickname", "", "Display name (required)")
	signupCmd.Flags().StringVar(&userPassword, "password", "", "Password (or N3DASH_PASSWORD)")
	signupCmd.Flags().StringVar(&userDept, "department", string(models.DepartmentUndefined),
		"Department: "+departmentChoices())
	signupCmd.MarkFlagRequired("id")
	signupCmd.MarkFlagRequired("nickname")
}

func departmentChoices() string {
	names := make([]string, len(models.UserDepartments))
	for i, d := range models.UserDepartments {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}

func password() (string, error) {
	if userPassword != "" {
		return userPassword, nil
	}
	if p := os.Getenv("N3DASH_PASSWORD"); p != "" {
		return p, nil
	}
	return "", fmt.Errorf("password required: pass --password or set N3DASH_PASSWORD")
}

func runLogin(cmd *cobra.Command, args []string) error {
	pw, err := password()
	if err != nil {
		return err
	}
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dash.Session.Login(cmd.Context(), userID, pw); err != nil {
		return err
	}
	u := a.dash.Session.User()
	fmt.Printf("Signed in as %s (%s, %s)\n", u.Nickname, u.UserID, u.Department)
	return nil
}

func runSignup(cmd *cobra.Command, args []string) error {
	pw, err := password()
	if err != nil {
		return err
	}
	dept := models.ParseUserDepartment(userDept)
	if string(dept) != userDept {
		return fmt.Errorf("unknown department %q, must be one of: %s", userDept, departmentChoices())
	}

	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.dash.Session.Signup(cmd.Context(), userID, userNickname, pw, dept); err != nil {
		return err
	}
	fmt.Printf("Account %s created\n", userID)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()

	if !a.dash.Session.Authenticated() {
		fmt.Println("Not signed in")
		return nil
	}
	a.dash.Logout()
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()

	u := a.dash.Session.User()
	if u == nil {
		fmt.Println("Not signed in")
		return nil
	}
	fmt.Printf("User ID:     %s\n", u.UserID)
	fmt.Printf("Nickname:    %s\n", u.Nickname)
	fmt.Printf("Department:  %s\n", u.Department)
	if u.ExpiresAt != nil {
		fmt.Printf("Expires:     %s\n", u.ExpiresAt.Local().Format("2006-01-02 15:04"))
	}
	fmt.Printf("Server:      %s\n", a.client.BaseURL())
	return nil
}
