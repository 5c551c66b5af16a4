package main

import (
	"git.sr.ht/~mkern/upred/cmd/csv"
	"git.sr.ht/~mkern/upred/cmd/eval"
	"git.sr.ht/~mkern/upred/cmd/predict"
	"git.sr.ht/~mkern/upred/cmd/stats"
	"git.sr.ht/~mkern/upred/cmd/train"
	"git.sr.ht/~mkern/upred/cmd/version"
	"git.sr.ht/~mkern/upred/pkg/upred"
	"github.com/spf13/cobra"
)

var logging bool

var root = &cobra.Command{
	Use:   "upred",
	Short: "U̲ser behavior p̲r̲e̲d̲iction from activity records",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		upred.SetLog(logging)
	},
}

func init() {
	root.PersistentFlags().BoolVarP(&logging, "log", "l", false, "enable logging")
	root.AddCommand(
		csv.CMD,
		eval.CMD,
		predict.CMD,
		stats.CMD,
		train.CMD,
		version.CMD,
	)
}

func main() {
	root.Execute()
}
