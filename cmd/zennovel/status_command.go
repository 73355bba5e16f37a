package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			client := &http.Client{Timeout: 3 * time.Second}
			url := "http://" + cfg.Paths.APIBind + "/api/status"
			resp, err := client.Get(url)
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Daemon", statusError, "not reachable at "+cfg.Paths.APIBind, colorize))
				return nil
			}
			defer resp.Body.Close()

			var status struct {
				Running      bool   `json:"running"`
				DatabasePath string `json:"database_path"`
				Novels       int    `json:"novels"`
				Version      string `json:"version"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
				return fmt.Errorf("decode status: %w", err)
			}

			kind := statusOK
			message := "running"
			if !status.Running {
				kind = statusWarn
				message = "not running"
			}
			fmt.Fprintln(out, renderStatusLine("Daemon", kind, message, colorize))
			fmt.Fprintln(out, renderStatusLine("Version", statusInfo, status.Version, colorize))
			fmt.Fprintln(out, renderStatusLine("Database", statusInfo, status.DatabasePath, colorize))
			fmt.Fprintln(out, renderStatusLine("Novels", statusInfo, fmt.Sprintf("%d", status.Novels), colorize))
			return nil
		},
	}
}
