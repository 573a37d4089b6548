package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/fentz26/n3dash/internal/api"
	"github.com/fentz26/n3dash/internal/models"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE:  runProjectList,
}

var projectCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a project",
	RunE:  runProjectCreate,
}

var departmentsCmd = &cobra.Command{
	Use:   "departments",
	Short: "List departments",
	RunE:  runDepartments,
}

var departmentsRefresh bool

var (
	projectTitle string
	projectDesc  string
	projectDept  string
)

func init() {
	projectCmd.AddCommand(projectListCmd, projectCreateCmd)

	projectListCmd.Flags().StringVar(&projectDept, "department", "", "Filter by department id")

	projectCreateCmd.Flags().StringVar(&projectTitle, "title", "", "Project title (required)")
	projectCreateCmd.Flags().StringVar(&projectDesc, "desc", "", "Project description")
	projectCreateCmd.Flags().StringVar(&projectDept, "department", "", "Owning department id (required)")
	projectCreateCmd.MarkFlagRequired("title")
	projectCreateCmd.MarkFlagRequired("department")

	departmentsCmd.Flags().BoolVar(&departmentsRefresh, "refresh", false, "Skip the local cache and fetch from the server")
}

func runProjectList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	items := a.dash.WorkItems
	if err := items.FetchProjects(cmd.Context(), api.ProjectFilter{DepartmentID: projectDept}); err != nil {
		return fmt.Errorf("%s: %w", items.Error(), err)
	}

	projects := items.Projects()
	if len(projects) == 0 {
		fmt.Println("No projects found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tPROGRESS\tDEPARTMENT")
	for _, p := range projects {
		dept := p.DepartmentID
		if p.DepartmentName != nil && *p.DepartmentName != "" {
			dept = *p.DepartmentName
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.0f%%\t%s\n",
			truncateID(p.ID), truncate(p.Title, 40), p.Status, p.Priority, p.Progress, dept)
	}
	w.Flush()
	return nil
}

func runProjectCreate(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	in := models.ProjectInput{Title: projectTitle, DepartmentID: projectDept}
	if projectDesc != "" {
		in.Description = &projectDesc
	}
	p, err := a.dash.WorkItems.CreateProject(cmd.Context(), in)
	if err != nil {
		return err
	}
	fmt.Printf("Created project: %s\n", p.ID)
	return nil
}

func runDepartments(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context(), printer{os.Stderr})
	if err != nil {
		return err
	}
	defer a.Close()
	if err := a.requireSession(); err != nil {
		return err
	}

	load := a.dash.LoadDepartments
	if departmentsRefresh {
		load = a.dash.ReloadDepartments
	}
	if err := load(cmd.Context()); err != nil {
		if msg := a.dash.Reference.State().Error; msg != "" {
			return fmt.Errorf("%s: %w", msg, err)
		}
		return err
	}

	departments := a.dash.Reference.Departments()
	if len(departments) == 0 {
		fmt.Println("No departments found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTAGS")
	for _, d := range departments {
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.ID, d.Name, joinTags(d.Tags))
	}
	w.Flush()
	return nil
}
