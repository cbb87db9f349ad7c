package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/DragonRuins/life-hub-sub001/models"
)

var incidentsCmd = &cobra.Command{
	Use:   "incidents",
	Short: "Inspect and resolve incidents without opening the console",
}

var incidentsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List incidents",
	RunE:  runIncidentsList,
}

var incidentsResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Mark an incident resolved",
	Args:  cobra.ExactArgs(1),
	RunE:  runIncidentsResolve,
}

var incidentStatusFilter string

func init() {
	incidentsListCmd.Flags().StringVar(&incidentStatusFilter, "status", "",
		"filter by status (active, investigating, resolved)")
	incidentsCmd.AddCommand(incidentsListCmd)
	incidentsCmd.AddCommand(incidentsResolveCmd)
}

func runIncidentsList(cmd *cobra.Command, args []string) error {
	c, err := newClient(newLogger())
	if err != nil {
		return err
	}

	incs, err := c.Incidents(cmd.Context(), models.IncidentStatus(incidentStatusFilter))
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSEVERITY\tSTATUS\tSTARTED\tTITLE")
	for _, inc := range incs {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			inc.ID, inc.Severity, inc.Status,
			inc.StartedAt.Local().Format("2006-01-02 15:04"), inc.Title)
	}
	return w.Flush()
}

func runIncidentsResolve(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid incident id %q", args[0])
	}

	c, err := newClient(newLogger())
	if err != nil {
		return err
	}

	// The server stamps resolved_at on this transition.
	inc, err := c.UpdateIncident(cmd.Context(), id, map[string]any{"status": models.IncidentResolved})
	if err != nil {
		return err
	}

	fmt.Printf("Resolved incident %d: %s\n", inc.ID, inc.Title)
	return nil
}
