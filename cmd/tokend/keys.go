package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tokend/internal/jwt"
	secret "github.com/dropDatabas3/tokend/internal/security/token"
	"github.com/dropDatabas3/tokend/internal/util/atomicwrite"
)

func newKeysCmd() *cobra.Command {
	keys := &cobra.Command{Use: "keys", Short: "Claves de firma"}

	var out string
	var force bool
	gen := &cobra.Command{
		Use:   "generate",
		Short: "Genera una clave Ed25519 PKCS8 (PEM) para signing.key_file",
		RunE: func(cmd *cobra.Command, args []string) error {
			pemBytes, err := jwt.GenerateEd25519PEM()
			if err != nil {
				return err
			}
			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(pemBytes)
				return err
			}
			if err := atomicwrite.WriteFile(out, pemBytes, 0o600, force); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", out)
			return nil
		},
	}
	gen.Flags().StringVarP(&out, "out", "o", "", "archivo destino (default stdout)")
	gen.Flags().BoolVar(&force, "force", false, "sobrescribir si existe")

	var n int
	sec := &cobra.Command{
		Use:   "secret",
		Short: "Genera un secreto aleatorio para signing.hmac_secret (HS256)",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := secret.GenerateSecret(n)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), s)
			return nil
		},
	}
	sec.Flags().IntVar(&n, "bytes", secret.MinSecretBytes, "bytes aleatorios")

	keys.AddCommand(gen, sec)
	return keys
}
