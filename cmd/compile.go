package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/provebench/leanc/internal/compiler"
	"github.com/provebench/leanc/internal/config"
	"github.com/provebench/leanc/internal/service"
)

var compileCmd = &cobra.Command{
	Use:          "compile [file]",
	Short:        "Compile a Lean file or source read from stdin",
	Long:         `Compile a .lean file, or pipe source on stdin with --stdin and --name. Results are cached by content; identical requests return the cached outcome.`,
	RunE:         runCompile,
	SilenceUsage: true,
	Args:         cobra.MaximumNArgs(1),
}

func init() {
	compileCmd.Flags().Bool("stdin", false, "Read Lean source from stdin instead of a file")
	compileCmd.Flags().String("name", "", "Symbolic file name for stdin content")
	compileCmd.Flags().StringP("project", "p", ".", "Lean project root directory")
	compileCmd.Flags().StringSliceP("dep", "d", []string{}, "Import dependencies to prepend")
	compileCmd.Flags().IntP("timeout", "t", 0, "Compilation timeout in seconds")
	compileCmd.Flags().Bool("no-store", false, "Do not record the attempt in the ledger")
	compileCmd.Flags().Bool("no-cache", false, "Bypass the result cache")
	compileCmd.Flags().Int("cache-ttl", 0, "Cache entry TTL in seconds (0 keeps entries forever)")
	compileCmd.Flags().StringToString("meta", nil, "Metadata tags recorded with the attempt (key=value)")
	compileCmd.Flags().Bool("diagnostics", false, "Print parsed compiler diagnostics")
}

func runCompile(cmd *cobra.Command, args []string) error {
	useStdin, _ := cmd.Flags().GetBool("stdin")

	if len(args) == 0 && !useStdin {
		return fmt.Errorf("requires a file argument or --stdin")
	}

	projectRoot, _ := cmd.Flags().GetString("project")

	absRoot, err := filepath.Abs(projectRoot)
	if err != nil {
		return fmt.Errorf("failed to resolve project root: %w", err)
	}

	bindPersistentFlags(cmd.Root())

	cfg, err := config.NewLoader().LoadForCompile(cmd, absRoot)
	if err != nil {
		return err
	}

	req := service.Request{
		ProjectRoot:  absRoot,
		StoreAttempt: true,
	}

	if useStdin {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}

		name, _ := cmd.Flags().GetString("name")
		if name == "" {
			return fmt.Errorf("--stdin requires --name")
		}

		req.Content = string(content)
		req.FileName = name
	} else {
		file := args[0]
		if !strings.HasSuffix(file, compiler.LeanExt) {
			return fmt.Errorf("file must have %s extension", compiler.LeanExt)
		}

		absFile, err := filepath.Abs(file)
		if err != nil {
			return fmt.Errorf("failed to resolve absolute path: %w", err)
		}

		req.FilePath = absFile
	}

	req.Dependencies, _ = cmd.Flags().GetStringSlice("dep")
	req.Timeout, _ = cmd.Flags().GetInt("timeout")

	if noStore, _ := cmd.Flags().GetBool("no-store"); noStore {
		req.StoreAttempt = false
	}

	if meta, _ := cmd.Flags().GetStringToString("meta"); len(meta) > 0 {
		req.Metadata = map[string]any{}
		for k, v := range meta {
			req.Metadata[k] = v
		}
	}

	comps, err := newComponents(cfg)
	if err != nil {
		return err
	}
	defer comps.close()

	if !comps.invoker.Installed(cmd.Context()) {
		fmt.Fprintln(os.Stderr, "Warning: elan toolchain not detected; compilation may fail")
	}

	resp, err := comps.svc.Compile(cmd.Context(), req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: attempt not recorded: %v\n", err)
	}

	if err := printJSON(resp); err != nil {
		return err
	}

	if wantDiagnostics, _ := cmd.Flags().GetBool("diagnostics"); wantDiagnostics {
		if diagnostics := compiler.ParseDiagnostics(resp.Stderr); len(diagnostics) > 0 {
			if err := printJSON(diagnostics); err != nil {
				return err
			}
		}
	}

	if !resp.Success {
		return fmt.Errorf("compilation failed (exit code %d)", resp.ReturnCode)
	}

	return nil
}
