package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/kikiluvv/videoeditor/internal/editor"
	"github.com/kikiluvv/videoeditor/pkg/util"
)

// mustGetBool gets a bool flag value or panics if the flag doesn't exist.
func mustGetBool(cmd *cobra.Command, name string) bool {
	val, err := cmd.Flags().GetBool(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetInt gets an int flag value or panics if the flag doesn't exist.
func mustGetInt(cmd *cobra.Command, name string) int {
	val, err := cmd.Flags().GetInt(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetString gets a string flag value or panics if the flag doesn't exist.
func mustGetString(cmd *cobra.Command, name string) string {
	val, err := cmd.Flags().GetString(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// mustGetFloat64 gets a float64 flag value or panics if the flag doesn't exist.
func mustGetFloat64(cmd *cobra.Command, name string) float64 {
	val, err := cmd.Flags().GetFloat64(name)
	if err != nil {
		panic(fmt.Sprintf("flag error for --%s: %v", name, err))
	}
	return val
}

// askForDir is the value of a bare --batch: the directory is chosen in a dialog
const askForDir = "?"

func addBatchFlag(cmd *cobra.Command) {
	cmd.Flags().StringP("batch", "b", "", "process every video in a directory (bare flag opens a directory dialog)")
	cmd.Flags().Lookup("batch").NoOptDefVal = askForDir
}

// parseInsertTime parses an insert position: seconds, [HH:]MM:SS, a negative
// offset from the end, or "end"
func parseInsertTime(s string) (time.Duration, error) {
	if strings.EqualFold(strings.TrimSpace(s), "end") {
		return editor.AtEnd, nil
	}
	return util.ParseTimestamp(s)
}

// parseEndTime parses a cut end; empty means the end of the video
func parseEndTime(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return editor.ToEnd, nil
	}
	return util.ParseTimestamp(s)
}
