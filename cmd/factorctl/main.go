// Command factorctl decodes personality-factor codes and previews filled prompt templates
// without starting the API.
//
// Usage:
//
//	factorctl decode "W4 K-2 S6, V'+5"
//	factorctl categories "G+6 S+4"
//	factorctl compose --feature career_paths --profile record.json
//	factorctl compose --template prompt.txt name=Ann job=nurse
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"CareerPortal_ResultsProject/internal/factors"
	"CareerPortal_ResultsProject/internal/models"
	"CareerPortal_ResultsProject/internal/prompt"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "factorctl",
		Short:        "Inspect personality-factor codes and prompt templates",
		SilenceUsage: true,
	}
	root.AddCommand(newDecodeCmd(), newCategoriesCmd(), newComposeCmd())
	return root
}

func newDecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode <factors>",
		Short: "Print the markdown explanation of a factor code",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := factors.Parse(strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), res.Explain())
			if len(res.Dropped) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "dropped: %s\n", strings.Join(res.Dropped, ", "))
			}
			return nil
		},
	}
}

func newCategoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories <factors>",
		Short: "Print the classified factors as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), factors.Categorize(strings.Join(args, " ")))
		},
	}
}

func newComposeCmd() *cobra.Command {
	var (
		feature      string
		templateFile string
		profileFile  string
		image        bool
	)
	cmd := &cobra.Command{
		Use:   "compose [key=value...]",
		Short: "Fill a prompt template with profile values",
		Long: `Fills either a feature template from the built-in catalog (--feature) or a template
file (--template). Values come from a profile JSON file (--profile) and key=value arguments,
the arguments taking precedence.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			template, err := loadTemplate(feature, templateFile, image)
			if err != nil {
				return err
			}

			data := map[string]string{}
			if profileFile != "" {
				raw, err := os.ReadFile(profileFile)
				if err != nil {
					return err
				}
				var p models.UserProfile
				if err := json.Unmarshal(raw, &p); err != nil {
					return fmt.Errorf("parse profile: %w", err)
				}
				data = prompt.Variables(&p, factors.Parse(p.PersonalityFactors))
			}
			for _, arg := range args {
				k, v, ok := strings.Cut(arg, "=")
				if !ok || k == "" {
					return fmt.Errorf("expected key=value, got %q", arg)
				}
				data[k] = v
			}

			out := prompt.Compose(template, data)
			fmt.Fprintln(cmd.OutOrStdout(), out.Text)
			if len(out.Missing) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "missing: %s\n", strings.Join(out.Missing, ", "))
			}
			if len(out.Leftover) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "leftover: %s\n", strings.Join(out.Leftover, ", "))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&feature, "feature", "", "feature id from the built-in catalog")
	cmd.Flags().StringVar(&templateFile, "template", "", "template file")
	cmd.Flags().StringVar(&profileFile, "profile", "", "profile JSON file")
	cmd.Flags().BoolVar(&image, "image", false, "use the image template of --feature")
	cmd.MarkFlagsMutuallyExclusive("feature", "template")
	return cmd
}

func loadTemplate(feature, file string, image bool) (string, error) {
	switch {
	case file != "":
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", err
		}
		return string(raw), nil
	case feature != "":
		f, err := prompt.ParseFeature(feature)
		if err != nil {
			return "", err
		}
		catalog, err := prompt.DefaultCatalog()
		if err != nil {
			return "", err
		}
		tpl := catalog.Templates(f)
		if image {
			if tpl.Image == "" {
				return "", fmt.Errorf("feature %s has no image template", f)
			}
			return tpl.Image, nil
		}
		return tpl.Prompt, nil
	default:
		return "", fmt.Errorf("one of --feature or --template is required")
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
