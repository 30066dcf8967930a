/*
Copyright 2020 Google LLC

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ademuri/listen-stats/internal/store"
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Lists the files imported into the database",
	Long:  ``,
	Run: func(cmd *cobra.Command, args []string) {
		err := listSources(os.Stdout, viper.GetString("database"))
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

// forgetCmd represents the forget command
var forgetCmd = &cobra.Command{
	Use:   "forget <source id>",
	Short: "Deletes an imported file and its plays from the database",
	Long:  `Source ids are listed by the sources command.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		err := forgetSource(os.Stdout, viper.GetString("database"), args[0])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(sourcesCmd)
	rootCmd.AddCommand(forgetCmd)
}

func listSources(out io.Writer, dbPath string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	sources, err := db.Sources()
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tIMPORTED\tPLAYS")
	for _, s := range sources {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", s.ID, s.Name, s.Imported.Format("2006-01-02 15:04"), s.Plays)
	}
	return w.Flush()
}

func forgetSource(out io.Writer, dbPath string, id string) error {
	db, err := store.New(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.DeleteSource(id); err != nil {
		return err
	}
	fmt.Fprintf(out, "Deleted source %s\n", id)
	return nil
}
