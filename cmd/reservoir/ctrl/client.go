package ctrl

import (
	"bytes"
	"fmt"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"io"
	"net"
)

func init() {
	clientCmd.Flags().StringVarP(&clientCommand, "command", "c", "write", "Command to send (start, stop, write, clean)")
	ctrlCmd.AddCommand(clientCmd)
}

var clientCmd = &cobra.Command{
	Use:   "client <path>",
	Short: "Send a command to a metrics instrument controller",
	Args:  cobra.ExactArgs(1),
	Run:   client,
}
var clientCommand string

func client(_ *cobra.Command, args []string) {
	addr, err := net.ResolveUnixAddr("unix", args[0])
	if err != nil {
		logrus.Fatalf("error resolving [%s] (%v)", args[0], err)
	}
	conn, err := net.DialUnix("unix", nil, addr)
	if err != nil {
		logrus.Fatalf("error connecting to [%s] (%v)", args[0], err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.Write([]byte(fmt.Sprintf("%s\n", clientCommand))); err != nil {
		logrus.Fatalf("error sending command (%v)", err)
	}
	response := new(bytes.Buffer)
	if _, err := io.Copy(response, conn); err != nil {
		logrus.Fatalf("error reading response (%v)", err)
	}
	logrus.Infof("response:\n%s\n", response.String())
}
