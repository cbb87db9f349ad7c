package commands

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Inspect network devices without opening the console",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List network devices with their status",
	RunE:  runNetworkList,
}

var networkDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a network device",
	Args:  cobra.ExactArgs(1),
	RunE:  runNetworkDelete,
}

func init() {
	networkCmd.AddCommand(networkListCmd)
	networkCmd.AddCommand(networkDeleteCmd)
}

func runNetworkList(cmd *cobra.Command, args []string) error {
	c, err := newClient(newLogger())
	if err != nil {
		return err
	}

	devices, err := c.NetworkDevices(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTYPE\tIP\tMAC\tSTATUS\tLOCATION")
	for _, d := range devices {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			d.ID, d.Name, d.DeviceType, d.IP, d.MAC, d.Status, d.Location)
	}
	return w.Flush()
}

func runNetworkDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid device id %q", args[0])
	}

	c, err := newClient(newLogger())
	if err != nil {
		return err
	}

	if err := c.DeleteNetworkDevice(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted network device %d\n", id)
	return nil
}
