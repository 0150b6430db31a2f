package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/provebench/leanc/internal/project"
)

var projectCmd = &cobra.Command{
	Use:          "project",
	Short:        "Scaffold and inspect Lean project directories",
	SilenceUsage: true,
}

var projectInitCmd = &cobra.Command{
	Use:          "init <path>",
	Short:        "Create a minimal Lean project",
	RunE:         runProjectInit,
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
}

var projectValidateCmd = &cobra.Command{
	Use:          "validate <path>",
	Short:        "Report on a project's structure",
	RunE:         runProjectValidate,
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
}

func init() {
	projectInitCmd.Flags().Bool("mathlib", false, "Add a pinned mathlib dependency to the manifest")

	projectCmd.AddCommand(projectInitCmd)
	projectCmd.AddCommand(projectValidateCmd)
}

func runProjectInit(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve project path: %w", err)
	}

	mathlib, _ := cmd.Flags().GetBool("mathlib")

	if err := project.Setup(afero.NewOsFs(), path, mathlib); err != nil {
		return err
	}

	fmt.Printf("Initialized Lean project at %s\n", path)

	return nil
}

func runProjectValidate(cmd *cobra.Command, args []string) error {
	path, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("failed to resolve project path: %w", err)
	}

	report := project.Validate(afero.NewOsFs(), path)

	if err := printJSON(report); err != nil {
		return err
	}

	if !report.Valid {
		return fmt.Errorf("project at %s is not valid", path)
	}

	return nil
}
