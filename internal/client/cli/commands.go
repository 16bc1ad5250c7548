package cli

import (
	"github.com/urfave/cli"
)

func commands() []cli.Command {
	return []cli.Command{
		{
			Name:      "import",
			Usage:     "import a browser localStorage export (JSON object of key/value pairs)",
			ArgsUsage: "FILE",
			Action:    runImport,
		},
		{
			Name:      "save",
			Usage:     "create or update one employee from a JSON file (- for stdin)",
			ArgsUsage: "FILE",
			Action:    runSave,
		},
		{
			Name:   "list",
			Usage:  "list locally stored employees",
			Action: runList,
		},
		{
			Name:      "show",
			Usage:     "print one employee as JSON",
			ArgsUsage: "ID",
			Action:    runShow,
		},
		{
			Name:      "delete",
			Usage:     "delete one employee",
			ArgsUsage: "ID",
			Action:    runDelete,
		},
		{
			Name:  "delete-entry",
			Usage: "delete one nested entry of an employee",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "employee, e",
					Value: "",
					Usage: "*employee `ID`",
				},
				cli.StringFlag{
					Name:  "collection, c",
					Value: "",
					Usage: "*collection `NAME`, e.g. qualifications",
				},
				cli.StringFlag{
					Name:  "entry, i",
					Value: "",
					Usage: "*entry `ID`",
				},
			},
			Action: runDeleteEntry,
		},
		{
			Name:      "attach",
			Usage:     "store a file in an attachment field",
			ArgsUsage: "FILE",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "employee, e",
					Value: "",
					Usage: "*employee `ID`",
				},
				cli.StringFlag{
					Name:  "slot",
					Value: "profilePicture",
					Usage: " attachment `PATH`, e.g. qualifications[17].documentUrl",
				},
				cli.StringFlag{
					Name:  "type, t",
					Value: "",
					Usage: " MIME `TYPE`, detected when omitted",
				},
			},
			Action: runAttach,
		},
		{
			Name:   "usage",
			Usage:  "report local storage usage",
			Action: runUsage,
		},
		{
			Name:   "clear",
			Usage:  "remove all local data except the session keys",
			Action: runClear,
		},
		{
			Name:  "login",
			Usage: "sign in to the server and remember the token",
			Flags: []cli.Flag{
				cli.StringFlag{
					Name:  "email, e",
					Value: "",
					Usage: "*account `EMAIL`",
				},
				cli.BoolFlag{
					Name:  "password-stdin",
					Usage: " read the password from standard input",
				},
			},
			Action: runLogin,
		},
		{
			Name:  "migrate",
			Usage: "migrate every local employee to the server",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "workers, w",
					Value: 0,
					Usage: " employees in flight at once `COUNT`",
				},
				cli.Float64Flag{
					Name:  "rate, r",
					Value: -1,
					Usage: " employee submissions per second `RATE` (0 = unlimited)",
				},
				cli.StringFlag{
					Name:  "report",
					Value: "",
					Usage: " write a PDF report to `FILE`",
				},
				cli.BoolFlag{
					Name:  "json",
					Usage: " print the summary as JSON",
				},
			},
			Action: runMigrate,
		},
		{
			Name:  "remote-list",
			Usage: "list employees already on the server",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "limit, l",
					Value: 50,
					Usage: " page size `N`",
				},
				cli.IntFlag{
					Name:  "offset, o",
					Value: 0,
					Usage: " first row `N`",
				},
			},
			Action: runRemoteList,
		},
	}
}
