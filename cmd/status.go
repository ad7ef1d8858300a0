package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"
)

var apiAddress string

var styleHealthy = lipgloss.NewStyle().Foreground(lipgloss.Color("#00B785")).Bold(true)
var styleDegraded = lipgloss.NewStyle().Foreground(lipgloss.Color("#e1244c")).Bold(true)

func init() {
	statusCmd.Flags().StringVarP(&apiAddress, "api-address", "a", "http://localhost:9218", "address of the running hausmeister server")
	statusCmd.Flags().BoolP("json", "j", false, "print the raw status report as JSON")

	rootCmd.AddCommand(&statusCmd)
}

var statusCmd = cobra.Command{
	Use:   "status",
	Short: "Show the aggregated service status",
	Long:  "This command queries a running hausmeister server and prints the aggregated health report of all configured probes.",

	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := http.Get(apiAddress + "/status")
		if err != nil {
			return fmt.Errorf("failed to reach %s: %w", apiAddress, err)
		}
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read status response: %w", err)
		}

		if printJson, _ := cmd.Flags().GetBool("json"); printJson {
			var buf bytes.Buffer
			if err := json.Indent(&buf, body, "", "    "); err != nil {
				return err
			}
			fmt.Println(string(pretty.Color(buf.Bytes(), nil)))
			return nil
		}

		report := struct {
			Status string `json:"status"`
		}{}
		if err := json.Unmarshal(body, &report); err != nil {
			return fmt.Errorf("failed to parse status response: %w", err)
		}

		services, err := decodeOrderedServices(body)
		if err != nil {
			return fmt.Errorf("failed to parse status response: %w", err)
		}

		if report.Status == "healthy" {
			fmt.Println(styleHealthy.Render("● HEALTHY"))
		} else {
			fmt.Println(styleDegraded.Render("◆ DEGRADED"))
		}

		for _, svc := range services {
			if svc.Status == "healthy" {
				fmt.Printf("  %s %s (%s)\n", styleHealthy.Render("✓"), svc.Name, svc.ResponseTime)
			} else {
				fmt.Printf("  %s %s: %s\n", styleDegraded.Render("✗"), svc.Name, svc.Error)
			}
		}

		return nil
	},
}

type serviceStatus struct {
	Name         string
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error"`
}

// decodeOrderedServices walks the services object with a token decoder
// because the server emits it in configuration order, which a plain map
// decode would discard.
func decodeOrderedServices(body []byte) ([]serviceStatus, error) {
	dec := json.NewDecoder(bytes.NewReader(body))

	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	for dec.More() {
		key, err := dec.Token()
		if err != nil {
			return nil, err
		}

		if key != "services" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, err
			}
			continue
		}

		if _, err := dec.Token(); err != nil {
			return nil, err
		}

		services := []serviceStatus{}
		for dec.More() {
			name, err := dec.Token()
			if err != nil {
				return nil, err
			}

			svc := serviceStatus{Name: fmt.Sprintf("%v", name)}
			if err := dec.Decode(&svc); err != nil {
				return nil, err
			}
			services = append(services, svc)
		}
		return services, nil
	}

	return nil, nil
}
