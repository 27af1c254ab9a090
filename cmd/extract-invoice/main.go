// Command extract-invoice prints the fields found in invoice PDFs as JSON.
//
//	extract-invoice -keyword 标度 invoice1.pdf invoice2.pdf
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/wangsirgan-jpg/fapiaobaoxiao/internal/invoice"
	"github.com/wangsirgan-jpg/fapiaobaoxiao/pkg/utils"
)

type result struct {
	File   string         `json:"file"`
	Fields map[string]any `json:"fields"`
}

func main() {
	keyword := flag.String("keyword", os.Getenv("COMPANY_NAME_KEYWORD"), "company name fragment the invoice must mention")
	verbose := flag.Bool("v", false, "log extraction details to stderr")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-keyword K] [-v] file.pdf...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 || *keyword == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := utils.NewCLILogger(*verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	extractor := invoice.NewExtractor(logger)

	results := make([]result, 0, flag.NArg())
	incomplete := false
	for _, path := range flag.Args() {
		fields := extractor.Extract(path, *keyword)
		if _, ok := fields.InvoiceNumber.Value(); !ok {
			incomplete = true
		}
		results = append(results, result{File: path, Fields: fields.Map()})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write output: %v\n", err)
		os.Exit(1)
	}
	if incomplete {
		os.Exit(3)
	}
}
