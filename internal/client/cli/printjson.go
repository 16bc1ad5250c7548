package cli

import (
	"encoding/json"
	"fmt"
	"io"
)

func printJSON(handle io.Writer, message interface{}) error {
	b, err := json.MarshalIndent(message, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(handle, "%s\n", b)
	return err
}
