package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"decree-workers/internal/models"
	"decree-workers/pkg/registry"
)

var registryPath string

func newTemplatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Maintain the decree template registry",
	}
	cmd.PersistentFlags().StringVar(&registryPath, "registry", "templates/registry.json", "path to registry file")
	cmd.AddCommand(newTemplatesListCmd(), newTemplatesAddCmd(), newTemplatesActivateCmd(), newTemplatesValidateCmd())
	return cmd
}

func newTemplatesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered templates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tCATEGORY\tVERSION\tACTIVE\tASSET")
			for _, t := range reg.Templates {
				fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", t.ID, t.Category, t.Version, t.Active, t.Asset())
			}
			return w.Flush()
		},
	}
}

func newTemplatesAddCmd() *cobra.Command {
	var t registry.Template
	var tags string
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add or replace a template entry",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if t.ID == "" || t.Category == "" {
				return errors.New("--id and --category are required")
			}
			if !models.Category(t.Category).IsValid() {
				return fmt.Errorf("unknown category %q", t.Category)
			}
			if tags != "" {
				t.Tags = strings.Split(tags, ",")
			}
			if err := updateRegistry(func(reg *registry.TemplateRegistry) error {
				reg.Upsert(t)
				return nil
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added template: %s\n", t.ID)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&t.ID, "id", "", "template id (e.g. sk_gty_2025)")
	f.StringVar(&t.DisplayName, "display-name", "", "display name")
	f.StringVar(&t.Description, "description", "", "description")
	f.StringVar(&t.Category, "category", "", "decree category (Tendik, GTT, GTY, KamadPNS, KamadNonPNS, KamadPLT)")
	f.StringVar(&t.Version, "version", "1.0.0", "version")
	f.StringVar(&t.AssetKey, "asset", "", "asset key (default <id>.docx)")
	f.BoolVar(&t.Active, "active", false, "make this the active template of its category")
	f.StringVar(&tags, "tags", "", "comma separated tags")
	return cmd
}

func newTemplatesActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <id>",
		Short: "Make a template the active one of its category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := updateRegistry(func(reg *registry.TemplateRegistry) error {
				t, ok := reg.Get(args[0])
				if !ok {
					return fmt.Errorf("template %s not found", args[0])
				}
				t.Active = true
				reg.Upsert(t)
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Activated template: %s\n", args[0])
			return nil
		},
	}
}

func newTemplatesValidateCmd() *cobra.Command {
	var templateDir string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the registry and that active template files exist",
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg, err := registry.LoadRegistry(registryPath)
			if err != nil {
				return fmt.Errorf("registry validation failed: %w", err)
			}
			var missing []string
			for _, t := range reg.Templates {
				if !t.Active || templateDir == "" {
					continue
				}
				if _, err := os.Stat(filepath.Join(templateDir, filepath.FromSlash(t.Asset()))); err != nil {
					missing = append(missing, t.Asset())
				}
			}
			if len(missing) > 0 {
				return fmt.Errorf("missing template files: %s", strings.Join(missing, ", "))
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Registry validation passed.")
			return nil
		},
	}
	cmd.Flags().StringVar(&templateDir, "templates", "", "also check files under this directory")
	return cmd
}

// updateRegistry loads the registry, creating it when absent, applies fn and saves.
func updateRegistry(fn func(*registry.TemplateRegistry) error) error {
	reg, err := registry.LoadRegistry(registryPath)
	if errors.Is(err, fs.ErrNotExist) {
		reg, err = &registry.TemplateRegistry{Version: "1.0.0"}, nil
	}
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := fn(reg); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	reg.LastUpdated = time.Now().Format(time.RFC3339)
	return registry.SaveRegistry(registryPath, reg)
}
