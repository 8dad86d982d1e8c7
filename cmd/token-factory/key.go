package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/XTakerDAO/token-factory-sub001/internal/auth"
	"github.com/XTakerDAO/token-factory-sub001/internal/keystore"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the encrypted operator key used to sign API requests",
}

func openKeystore() (*keystore.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return keystore.NewStore(cfg.KeyFile)
}

func newPassword() ([]byte, error) {
	pw, err := keystore.PromptPassword("New password: ")
	if err != nil {
		return nil, err
	}
	again, err := keystore.PromptPassword("Repeat password: ")
	if err != nil {
		keystore.Zero(pw)
		return nil, err
	}
	defer keystore.Zero(again)
	if !bytes.Equal(pw, again) {
		keystore.Zero(pw)
		return nil, errors.New("passwords do not match")
	}
	return pw, nil
}

var keyNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Generate a new operator key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		pw, err := newPassword()
		if err != nil {
			return err
		}
		defer keystore.Zero(pw)
		k, err := ks.Create(pw)
		if err != nil {
			return err
		}
		printJSON(cmd.OutOrStdout(), map[string]string{"address": k.Address().Hex(), "path": ks.Path})
		return nil
	},
}

var keyImportCmd = &cobra.Command{
	Use:   "import <hex-private-key>",
	Short: "Import an existing private key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		pw, err := newPassword()
		if err != nil {
			return err
		}
		defer keystore.Zero(pw)
		k, err := ks.Import(args[0], pw)
		if err != nil {
			return err
		}
		printJSON(cmd.OutOrStdout(), map[string]string{"address": k.Address().Hex(), "path": ks.Path})
		return nil
	},
}

var keyAddressCmd = &cobra.Command{
	Use:   "address",
	Short: "Print the operator address",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ks, err := openKeystore()
		if err != nil {
			return err
		}
		pw, err := keystore.PromptPassword("Password: ")
		if err != nil {
			return err
		}
		defer keystore.Zero(pw)
		k, err := ks.Load(pw)
		if err != nil {
			return err
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), k.Address().Hex())
		return nil
	},
}

var (
	signMethod   string
	signPath     string
	signBodyFile string
)

// signCmd prints the headers that authenticate one API request.
var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign an API request with the operator key",
	RunE: func(cmd *cobra.Command, _ []string) error {
		var body []byte
		var err error
		switch signBodyFile {
		case "":
		case "-":
			body, err = io.ReadAll(cmd.InOrStdin())
		default:
			body, err = os.ReadFile(signBodyFile)
		}
		if err != nil {
			return fmt.Errorf("read body: %w", err)
		}
		if len(body) > 0 && !json.Valid(body) {
			return errors.New("body is not valid JSON")
		}

		ks, err := openKeystore()
		if err != nil {
			return err
		}
		pw, err := keystore.PromptPassword("Password: ")
		if err != nil {
			return err
		}
		defer keystore.Zero(pw)
		k, err := ks.Load(pw)
		if err != nil {
			return err
		}
		priv, err := k.PrivateKey()
		if err != nil {
			return err
		}
		hdrs, err := auth.Headers(priv, strings.ToUpper(signMethod), signPath, body, time.Now())
		if err != nil {
			return err
		}
		printJSON(cmd.OutOrStdout(), hdrs)
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keyNewCmd, keyImportCmd, keyAddressCmd)

	signCmd.Flags().StringVar(&signMethod, "method", "POST", "HTTP method")
	signCmd.Flags().StringVar(&signPath, "path", "", "request path, e.g. /api/v1/assets")
	signCmd.Flags().StringVar(&signBodyFile, "body", "", "file holding the exact request body (- for stdin)")
	_ = signCmd.MarkFlagRequired("path")
}
