package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"automv/internal/settings"
)

func newSettingsCommand(ctx *commandContext) *cobra.Command {
	settingsCmd := &cobra.Command{
		Use:   "settings",
		Short: "Inspect and update AutoMV credentials",
	}
	settingsCmd.AddCommand(newSettingsShowCommand(ctx))
	settingsCmd.AddCommand(newSettingsSetCommand(ctx))
	return settingsCmd
}

func newSettingsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show which credentials are configured (values are never printed)",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.settingsStore()
			if err != nil {
				return err
			}
			current, err := store.Load()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			provider := current.Provider()
			fmt.Fprintf(out, "Provider: %s (lip-sync %s)\n", provider, supportLabel(provider.SupportsLipSync()))
			fmt.Fprintf(out, "Credentials file: %s\n\n", store.Path())

			keyRows := make([][]string, 0, len(settings.APIKeys))
			for _, k := range settings.APIKeys {
				state := "missing"
				if current.Get(k.Name) != "" {
					state = "set"
				}
				keyRows = append(keyRows, []string{k.Name, k.Label, yesNo(k.Required), state})
			}
			fmt.Fprintln(out, renderTable([]string{"Key", "Description", "Required", "State"}, keyRows, nil))

			modelRows := make([][]string, 0, len(settings.ModelSettings))
			for _, k := range settings.ModelSettings {
				modelRows = append(modelRows, []string{k.Name, k.Label, current.Value(k)})
			}
			fmt.Fprintln(out, renderTable([]string{"Setting", "Description", "Value"}, modelRows, nil))

			if missing := current.MissingRequired(); len(missing) > 0 {
				fmt.Fprintf(out, "Not ready: %s required\n", strings.Join(missing, ", "))
			} else {
				fmt.Fprintln(out, "Ready to generate")
			}
			return nil
		},
	}
}

func newSettingsSetCommand(ctx *commandContext) *cobra.Command {
	var provider string
	var fromFile string

	cmd := &cobra.Command{
		Use:   "set [KEY=VALUE...]",
		Short: "Store credentials and model identifiers",
		Long: "Store credentials and model identifiers in the AutoMV .env file.\n\n" +
			"Values are given as KEY=VALUE arguments or read from a dotenv file with --from-file.\n" +
			"Keys that are not mentioned keep their stored value.",
		RunE: func(cmd *cobra.Command, args []string) error {
			values := map[string]string{}
			if path := strings.TrimSpace(fromFile); path != "" {
				fileValues, err := godotenv.Read(path)
				if err != nil {
					return fmt.Errorf("read %s: %w", path, err)
				}
				for k, v := range fileValues {
					values[k] = v
				}
			}
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				key = strings.TrimSpace(key)
				if !ok || key == "" {
					return fmt.Errorf("invalid assignment %q (want KEY=VALUE)", arg)
				}
				values[key] = value
			}
			// The provider selector may arrive through the file as well.
			if selector, ok := values[settings.ProviderKey]; ok {
				delete(values, settings.ProviderKey)
				if strings.TrimSpace(provider) == "" {
					provider = selector
				}
			}

			store, err := ctx.settingsStore()
			if err != nil {
				return err
			}
			if strings.TrimSpace(provider) == "" {
				current, err := store.Load()
				if err != nil {
					return err
				}
				provider = current.Provider().String()
			}
			summary, err := store.Save(provider, values)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(values) > 0 {
				keys := make([]string, 0, len(values))
				for k := range values {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Fprintf(out, "Updated: %s\n", strings.Join(keys, ", "))
			}
			fmt.Fprintln(out, summary)
			return nil
		},
	}

	cmd.Flags().StringVar(&provider, "provider", "", "Ark provider: byteplus or volcengine (defaults to the stored selector)")
	cmd.Flags().StringVar(&fromFile, "from-file", "", "Read KEY=VALUE pairs from a dotenv file")
	return cmd
}

func supportLabel(supported bool) string {
	if supported {
		return "available"
	}
	return "unavailable"
}
