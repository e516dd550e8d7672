// cmd/bmspoller/profiles.go
package main

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/tamzrod/bms-poller/internal/config"
	"github.com/tamzrod/bms-poller/internal/profile"
)

func newProfilesCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List device types and their commands",
		RunE: func(cmd *cobra.Command, args []string) error {
			var declared []config.ProfileConfig
			if cfgPath != "" {
				cfg, err := loadConfig(cfgPath)
				if err != nil {
					return err
				}
				declared = cfg.Profiles
			}

			reg, err := profile.NewRegistry(declared)
			if err != nil {
				return err
			}
			return printProfiles(cmd, reg)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to YAML config with declared profiles")
	return cmd
}

func printProfiles(cmd *cobra.Command, reg *profile.Registry) error {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"Type", "Command", "FC", "Detail"})

	for _, typ := range reg.Types() {
		p, err := reg.Lookup(typ)
		if err != nil {
			return err
		}
		for _, s := range p.Map.Sequences() {
			fcs := make([]string, 0, len(s.Blocks))
			seen := make(map[string]bool)
			for _, b := range s.Blocks {
				if fc := b.FC.String(); !seen[fc] {
					seen[fc] = true
					fcs = append(fcs, fc)
				}
			}
			t.AppendRow(table.Row{typ, s.Name, strings.Join(fcs, ","), fmt.Sprintf("%d blocks", len(s.Blocks))})
		}
		for _, name := range p.Map.Commands() {
			w, ok := p.Map.Write(name)
			if !ok {
				continue
			}
			t.AppendRow(table.Row{typ, w.Name, w.FC.String(), fmt.Sprintf("%s addr=0x%04X", w.Kind, w.Address)})
		}
		t.AppendSeparator()
	}

	t.Render()
	return nil
}
