// Copyright (c) 2019-2021, AT&T Intellectual Property. All rights reserved.
//
// Copyright (c) 2015-2017 by Brocade Communications Systems, Inc.
// All rights reserved.
//
// SPDX-License-Identifier: MPL-2.0

// Command xmlpath evaluates an XPath expression against an XML
// document and prints the result.
//
//	xmlpath eval -f doc.xml '//book[price > 10]/title'
package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sdcio/xmlpath"
)

var (
	xmlFile string
	debug   bool
)

var rootCmd = &cobra.Command{
	Use:           "xmlpath",
	Short:         "XML document processor with XPath queries",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var evalCmd = &cobra.Command{
	Use:   "eval EXPR",
	Short: "Evaluate an XPath expression against a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if debug {
			log.SetLevel(log.DebugLevel)
		}

		f, err := os.Open(xmlFile)
		if err != nil {
			return err
		}
		defer f.Close()

		doc, err := xmlpath.Parse(f)
		if err != nil {
			return err
		}

		log.Debugf("evaluating %q against %s", args[0], xmlFile)
		res, err := doc.EvalXpath(args[0])
		if err != nil {
			return err
		}
		fmt.Println(res.PrintResult())
		return nil
	},
}

func init() {
	evalCmd.Flags().StringVarP(&xmlFile, "file", "f", "", "XML document to query")
	evalCmd.MarkFlagRequired("file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")
	rootCmd.AddCommand(evalCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error(err.Error())
		os.Exit(1)
	}
}
