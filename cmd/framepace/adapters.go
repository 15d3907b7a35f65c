package main

import (
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli"

	"github.com/gogpu/framepace/device"
)

// ListAdapters prints the adapters of the selected backend.
func ListAdapters(ctx *cli.Context) error {
	setupLogging(ctx)

	adapters, err := device.Adapters(device.WithBackend(ctx.String("backend")))
	if err != nil {
		logger.Error("could not enumerate adapters", "err", err)
		return err
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"Index", "Name", "Type", "Backend"})
	for _, a := range adapters {
		table.Append([]string{
			fmt.Sprintf("%d", a.Index),
			a.Name,
			a.Type,
			a.Backend,
		})
	}
	table.Render()
	return nil
}
