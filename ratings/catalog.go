package ratings

import (
	"bufio"
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/rushteam/itemsim/core"
)

// Catalog 是 itemID -> 展示名称的映射，只在渲染结果时使用。
type Catalog map[int64]string

// Name 返回物品名称，未知物品返回 "#<id>"。
func (c Catalog) Name(itemID int64) string {
	if name, ok := c[itemID]; ok {
		return name
	}
	return "#" + strconv.FormatInt(itemID, 10)
}

// LoadMovieLensCatalog 解析 ml-1m movies.dat（id::title::genres，ISO-8859-1）。
func LoadMovieLensCatalog(r io.Reader) (Catalog, error) {
	sc := bufio.NewScanner(charmap.ISO8859_1.NewDecoder().Reader(r))
	catalog := make(Catalog)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "::", 3)
		if len(fields) < 2 {
			return nil, core.NewDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput,
				"catalog: line "+strconv.Itoa(lineNo)+": expected id::title")
		}
		id, err := parseID(fields[0], "item id")
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput, err, "catalog: line %d", lineNo)
		}
		catalog[id] = fields[1]
	}
	if err := sc.Err(); err != nil {
		return nil, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeUnavailable, err, "catalog: read input")
	}
	return catalog, nil
}

// LoadCSVCatalog 解析带表头的 movies.csv（movieId,title,genres），title 可带引号与逗号。
func LoadCSVCatalog(r io.Reader) (Catalog, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	records, err := cr.ReadAll()
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput, err, "catalog: parse csv")
	}
	catalog := make(Catalog, len(records))
	for i, rec := range records {
		if i == 0 || len(rec) < 2 {
			continue
		}
		id, err := parseID(rec[0], "item id")
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput, err, "catalog: line %d", i+1)
		}
		catalog[id] = rec[1]
	}
	return catalog, nil
}
