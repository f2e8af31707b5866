// Package internal holds the startup plumbing shared by every command in this module.
package internal

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/posener/complete"
	"within.website/x/flagenv"
)

var (
	licenseShow = flag.Bool("licenses", false, "show software licenses and exit")
	versionShow = flag.Bool("version", false, "show version and exit")
)

// HandleStartup loads a .env file if there is one, offers shell completion, lets
// environment variables set flags and parses the command line. It exits the process
// for -licenses and -version.
func HandleStartup() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(os.Stderr, "can't load .env:", err)
	}

	cmd := complete.Command{Flags: complete.Flags{}}
	flag.VisitAll(func(fl *flag.Flag) {
		cmd.Flags["-"+fl.Name] = complete.PredictAnything
	})
	if complete.New(filepath.Base(os.Args[0]), cmd).Complete() {
		os.Exit(0)
	}

	flagenv.Parse()
	flag.Parse()

	if *licenseShow {
		PrintLicenses(os.Stdout)
		os.Exit(0)
	}

	if *versionShow {
		fmt.Println(VersionString())
		os.Exit(0)
	}
}
