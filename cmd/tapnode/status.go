package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/tapnode/internal/config"
	"github.com/muurk/tapnode/internal/httpd"
	"github.com/muurk/tapnode/internal/ui"
)

var statusAddr string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Query a running agent",
	Long: `Query the control server of a running tapnode agent and print its
status. By default the local agent on the configured port is queried;
use --addr to reach an agent elsewhere on the network.`,
	Example: `  # Query the local agent
  tapnode status

  # Query a remote node
  tapnode status --addr 192.168.1.50:8080`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusAddr, "addr", "", "Agent address (host:port; default: localhost on the configured port)")
	statusCmd.Flags().StringVar(&configPath, "config", "", "Path to config file (default: platform config dir)")
}

func runStatus(cmd *cobra.Command, args []string) error {
	addr := statusAddr
	if addr == "" {
		cfg, err := config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		addr = fmt.Sprintf("localhost:%d", cfg.Port)
	}

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get("http://" + addr + "/api/status")
	if err != nil {
		fmt.Println(ui.ErrorStyle.Render("Agent unreachable"))
		return fmt.Errorf("failed to reach agent at %s: %w", addr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agent at %s answered %s", addr, resp.Status)
	}

	var status httpd.Status
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return fmt.Errorf("failed to decode agent status: %w", err)
	}

	ledState := ui.OffStyle.Render("off")
	if status.LED {
		ledState = ui.OnStyle.Render("on")
	}

	fmt.Println(ui.TitleStyle.Render("Tapnode agent"))
	fmt.Println(ui.KeyStyle.Render("Node:") + ui.ValueStyle.Render(status.Node))
	fmt.Println(ui.KeyStyle.Render("Address:") + ui.ValueStyle.Render(addr))
	fmt.Println(ui.KeyStyle.Render("Version:") + ui.ValueStyle.Render(status.Version))
	fmt.Println(ui.KeyStyle.Render("LED:") + ledState)
	fmt.Println(ui.KeyStyle.Render("Uptime:") + ui.ValueStyle.Render(
		(time.Duration(status.Uptime * float64(time.Second))).Truncate(time.Second).String()))

	return nil
}
