package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DragonRuins/life-hub-sub001/internal/metrics"
	"github.com/DragonRuins/life-hub-sub001/models"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "Inspect monitored hosts without opening the console",
}

var hostsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List hosts with their status",
	RunE:  runHostsList,
}

var hostsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one host in detail",
	Args:  cobra.ExactArgs(1),
	RunE:  runHostsShow,
}

func init() {
	hostsCmd.AddCommand(hostsListCmd)
	hostsCmd.AddCommand(hostsShowCmd)
}

func runHostsList(cmd *cobra.Command, args []string) error {
	c, err := newClient(newLogger())
	if err != nil {
		return err
	}

	hosts, err := c.Hosts(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tIP\tSTATUS\tLOCATION")
	for _, h := range hosts {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			h.ID, h.Name, h.HostType, h.IP, h.Status, h.Location)
	}
	return w.Flush()
}

func runHostsShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid host id %q", args[0])
	}

	c, err := newClient(newLogger())
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	h, err := c.Host(ctx, id)
	if err != nil {
		return err
	}

	fmt.Printf("%s (%s)\n", h.Name, h.HostType)
	fmt.Printf("  Status:    %s\n", h.Status)
	if h.IP != "" {
		fmt.Printf("  IP:        %s\n", h.IP)
	}
	if h.Location != "" {
		fmt.Printf("  Location:  %s\n", h.Location)
	}
	if h.LastSeenAt != nil {
		fmt.Printf("  Last seen: %s\n", h.LastSeenAt.Local().Format("2006-01-02 15:04:05"))
	}
	if hw := h.Hardware; hw != nil {
		fmt.Printf("  Hardware:  %s, %d cores / %d threads, %.0f GB RAM, %.0f GB disk\n",
			hw.CPU, hw.CPUCores, hw.CPUThreads, hw.RAMGB, hw.DiskGB)
	}

	latest, err := c.MetricsLatest(ctx, models.SourceHost, id)
	if err == nil && len(latest) > 0 {
		fmt.Println("  Metrics:")
		for _, m := range latest {
			fmt.Printf("    %-14s %s\n", m.MetricName, metrics.FormatValue(m.MetricName, m.Value))
		}
	}

	if len(h.Containers) > 0 {
		fmt.Printf("  Containers (%d):\n", len(h.Containers))
		for _, ct := range h.Containers {
			fmt.Printf("    %-24s %-10s %s\n", ct.Name, ct.Status, ct.Image)
		}
	}
	if len(h.Services) > 0 {
		fmt.Printf("  Services (%d):\n", len(h.Services))
		for _, svc := range h.Services {
			fmt.Printf("    %-24s %-10s %s\n", svc.Name, svc.Status, svc.URL)
		}
	}
	return nil
}
