package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jaekwang-park/vici/internal/config"
)

func loginCmd(a *app) *cobra.Command {
	var email, password string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in and store the token in the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r := bufio.NewReader(a.in)
			if email == "" {
				fmt.Fprint(a.errOut, "Email: ")
				line, _ := r.ReadString('\n')
				email = strings.TrimSpace(line)
			}
			if password == "" {
				fmt.Fprint(a.errOut, "Password: ")
				line, _ := r.ReadString('\n')
				password = strings.TrimSpace(line)
			}
			if email == "" || password == "" {
				return fmt.Errorf("email and password are required")
			}

			tokens, err := a.client.Login(cmd.Context(), email, password)
			if err != nil {
				return fmt.Errorf("signing in: %w", err)
			}
			if err := config.SaveClientToken(a.v, a.cfgPath, tokens.IDToken); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s Signed in as %s\n", boldGreen("✓"), email)
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "Account email")
	cmd.Flags().StringVar(&password, "password", "", "Account password (prompted when empty)")
	return cmd
}
