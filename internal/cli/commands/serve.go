package commands

import (
	"github.com/spf13/cobra"

	"github.com/fiitjobs/jobadmin/internal/server"
)

// NewServeCmd creates the serve command
func NewServeCmd(env *Env) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the admin web console",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				env.Config.Server.ListenAddr = addr
			}

			srv, err := server.New(env.Config, env.Logger, env.Sessions, env.Client, env.Version)
			if err != nil {
				return err
			}

			return srv.Start(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides LISTEN_ADDR)")

	return cmd
}
