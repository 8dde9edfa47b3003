package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/bluelist/config"
	"github.com/sagarc03/bluelist/keybackend"
)

const defaultKeysFile = "keys.yaml"

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage signing key pairs",
	Long: `Manage the access/secret key pairs used to sign upload policies.

Keys are stored in the file named by keys.file (default: keys.yaml).`,
}

var keysAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or replace a key pair interactively",
	Long: `Add a key pair to the keys file.

You will be prompted for the access key and the secret key. The secret is
masked while typing. An existing pair with the same access key is replaced.`,
	RunE: runKeysAdd,
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured access keys",
	Long: `List the access keys in the keys file.

Secrets are hidden by default; use --show-secrets to reveal them.`,
	RunE: runKeysList,
}

var showSecrets bool

func init() {
	keysCmd.PersistentFlags().String("keys-file", "", "JSON or YAML keys file (default: keys.yaml)")
	keysListCmd.Flags().BoolVar(&showSecrets, "show-secrets", false, "show secret values")

	keysCmd.AddCommand(keysAddCmd)
	keysCmd.AddCommand(keysListCmd)
	rootCmd.AddCommand(keysCmd)
}

func keysFile(cfg *config.Config) string {
	if cfg.Keys.File != "" {
		return cfg.Keys.File
	}
	return defaultKeysFile
}

func runKeysAdd(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	path := keysFile(cfg)

	accessKeyPrompt := promptui.Prompt{
		Label:   "Access Key",
		Default: cfg.Signing.AccessKey,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("access key is required")
			}
			return nil
		},
	}
	accessKey, err := accessKeyPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	secretKeyPrompt := promptui.Prompt{
		Label: "Secret Key",
		Mask:  '*',
		Validate: func(input string) error {
			if input == "" {
				return errors.New("secret key is required")
			}
			return nil
		},
	}
	secretKey, err := secretKeyPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	if err := keybackend.SaveKeyPair(path, keybackend.KeyPair{AccessKey: accessKey, SecretKey: secretKey}); err != nil {
		return fmt.Errorf("save key pair: %w", err)
	}

	fmt.Printf("Saved key %s to %s\n", accessKey, path)
	return nil
}

func runKeysList(cmd *cobra.Command, _ []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}
	path := keysFile(cfg)

	pairs, err := keybackend.ReadKeyPairs(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("No keys configured.")
			fmt.Println("Run 'bluelist keys add' to create one.")
			return nil
		}
		return fmt.Errorf("read keys: %w", err)
	}

	return writeKeyList(os.Stdout, pairs, cfg.Signing.AccessKey, showSecrets)
}

// writeKeyList prints one row per pair. The signing key is marked with an
// asterisk.
func writeKeyList(w io.Writer, pairs []keybackend.KeyPair, signingKey string, showSecrets bool) error {
	if len(pairs) == 0 {
		_, err := fmt.Fprintln(w, "No keys configured.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "\tACCESS KEY\tSECRET KEY")
	for _, p := range pairs {
		marker := ""
		if p.AccessKey == signingKey {
			marker = "*"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", marker, p.AccessKey, maskSecret(p.SecretKey, showSecrets))
	}
	return tw.Flush()
}

func maskSecret(secret string, showSecrets bool) string {
	if showSecrets {
		return secret
	}
	if secret == "" {
		return "(not set)"
	}
	return "********"
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
