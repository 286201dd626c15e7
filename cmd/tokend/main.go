// Command tokend es el token endpoint OAuth2 extensible.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/dropDatabas3/tokend/internal/config"
)

var version = "dev"

type rootFlags struct {
	configPath string
	envFile    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &rootFlags{}
	root := &cobra.Command{
		Use:           "tokend",
		Short:         "Token endpoint OAuth2 con grants y campos de respuesta extensibles",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// .env es opcional; las variables ya definidas ganan
			if f.envFile != "" {
				_ = godotenv.Load(f.envFile)
			}
		},
	}
	root.PersistentFlags().StringVar(&f.configPath, "config", envOr("TOKEND_CONFIG", "configs/tokend.yaml"), "ruta al YAML de configuración (env TOKEND_CONFIG)")
	root.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "ruta a .env (opcional)")

	root.AddCommand(newServeCmd(f))
	root.AddCommand(newKeysCmd())
	root.AddCommand(newPasswordCmd())
	root.AddCommand(newTokenCmd(f))
	return root
}

func (f *rootFlags) load() (*config.Config, error) {
	return config.Load(f.configPath)
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
