package deploy

import (
	"bufio"
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed report.schema.json
var reportSchemaSource string

// Stdout markers the deploy script prints for its return values.
const (
	WorldMarker      = "world: contract IWorld"
	StartBlockMarker = "startBlock: uint256"
)

var (
	reportSchemaOnce sync.Once
	reportSchema     *jsonschema.Schema
	reportSchemaErr  error
)

func compiledReportSchema() (*jsonschema.Schema, error) {
	reportSchemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource("report.schema.json", strings.NewReader(reportSchemaSource)); err != nil {
			reportSchemaErr = err
			return
		}
		reportSchema, reportSchemaErr = c.Compile("report.schema.json")
	})
	return reportSchema, reportSchemaErr
}

type report struct {
	World      string      `json:"world"`
	StartBlock json.Number `json:"startBlock"`
}

// readReport parses and validates the structured report the deploy script
// writes. A missing file returns os.ErrNotExist.
func readReport(path string) (world, startBlock string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return "", "", os.ErrNotExist
	}

	schema, err := compiledReportSchema()
	if err != nil {
		return "", "", fmt.Errorf("deploy report schema: %w", err)
	}
	var doc any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return "", "", fmt.Errorf("parse deploy report: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return "", "", fmt.Errorf("invalid deploy report: %w", err)
	}

	var r report
	if err := json.Unmarshal(data, &r); err != nil {
		return "", "", fmt.Errorf("parse deploy report: %w", err)
	}
	block, ok := new(big.Int).SetString(r.StartBlock.String(), 10)
	if !ok {
		return "", "", fmt.Errorf("invalid deploy report: startBlock %q", r.StartBlock)
	}
	return common.HexToAddress(r.World).Hex(), block.String(), nil
}

// scrapeMarkers scans deploy output for the world and startBlock markers.
// The value is the last whitespace-separated token of the marker line; later
// lines win.
func scrapeMarkers(r io.Reader) (world, startBlock string, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, WorldMarker):
			if tok := lastToken(line); common.IsHexAddress(tok) {
				world = common.HexToAddress(tok).Hex()
			}
		case strings.HasPrefix(line, StartBlockMarker):
			if tok := lastToken(line); isDecimal(tok) {
				startBlock = tok
			}
		}
	}
	return world, startBlock, sc.Err()
}

func lastToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func isDecimal(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
