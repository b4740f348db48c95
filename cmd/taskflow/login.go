package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tgienger/taskflow/internal/config"
)

// passwordEnv holds the password when --password-stdin is not used
const passwordEnv = config.EnvPrefix + "_PASSWORD"

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var (
		email         string
		passwordStdin bool
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), passwordStdin)
			if err != nil {
				return err
			}

			e, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			ctx, cancel := context.WithTimeout(context.Background(), e.cfg.RequestTimeout)
			defer cancel()

			identity, err := e.gateway.Login(ctx, strings.TrimSpace(email), password)
			if err != nil {
				return fmt.Errorf("login failed: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", describe(identity.FullName, identity.Email))
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "read the password from stdin")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readPassword(stdin io.Reader, fromStdin bool) (string, error) {
	if !fromStdin {
		if password := os.Getenv(passwordEnv); password != "" {
			return password, nil
		}
		return "", fmt.Errorf("no password: pass --password-stdin or set %s", passwordEnv)
	}

	line, err := bufio.NewReader(stdin).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.New("empty password on stdin")
	}
	return password, nil
}

func describe(fullName, email string) string {
	if fullName == "" {
		return email
	}
	return fmt.Sprintf("%s <%s>", fullName, email)
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.db.SetLastProjectID(0); err != nil {
				return err
			}
			e.gateway.Logout()
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newWhoamiCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in user",
		Long: `Show the signed-in user.

A stored token that cannot be read is discarded, which signs you out.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := bootstrap(opts)
			if err != nil {
				return err
			}
			defer e.Close()

			identity := e.gateway.CurrentUser()
			if identity == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "Not logged in")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), describe(identity.FullName, identity.Email))
			return nil
		},
	}
}
