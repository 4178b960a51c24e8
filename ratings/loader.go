package ratings

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/rushteam/itemsim/core"
)

// Loader 把按行分隔的评分文件解析为 core.Rating。
//
// 支持的格式：
//   - MovieLens 1M：user::item::rating::timestamp（ISO-8859-1）
//   - CSV：user,item,rating[,timestamp]（可带表头）
type Loader struct {
	// Separator 字段分隔符，例如 "::" 或 ","
	Separator string

	// Header 为 true 时跳过第一行
	Header bool

	// Latin1 为 true 时按 ISO-8859-1 解码输入
	Latin1 bool

	// MinRating / MaxRating 是合法评分范围（含），为 0 时使用 core.MinRating / core.MaxRating
	MinRating int
	MaxRating int
}

// NewMovieLensLoader 返回 ml-1m ratings.dat 的 Loader。
func NewMovieLensLoader() *Loader {
	return &Loader{Separator: "::", Latin1: true}
}

// NewCSVLoader 返回逗号分隔、带表头的 Loader。
func NewCSVLoader() *Loader {
	return &Loader{Separator: ",", Header: true}
}

// LoadMovieLens 按 ml-1m 格式读取评分写入 s。
func LoadMovieLens(r io.Reader, s *Store) (int, error) {
	return NewMovieLensLoader().Load(r, s)
}

// LoadCSV 读取以 sep 分隔的评分写入 s，header 为 true 时跳过首行。
func LoadCSV(r io.Reader, sep rune, header bool, s *Store) (int, error) {
	return (&Loader{Separator: string(sep), Header: header}).Load(r, s)
}

// Load 读取全部评分写入 s，返回成功写入的条数。
// 任何一行格式错误都会中止加载，返回 INVALID_INPUT 错误（带行号）。
func (l *Loader) Load(r io.Reader, s *Store) (int, error) {
	if l.Latin1 {
		r = charmap.ISO8859_1.NewDecoder().Reader(r)
	}
	sep := l.Separator
	if sep == "" {
		sep = "::"
	}
	minRating, maxRating := l.MinRating, l.MaxRating
	if minRating == 0 && maxRating == 0 {
		minRating, maxRating = core.MinRating, core.MaxRating
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo, n := 0, 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || (l.Header && lineNo == 1) {
			continue
		}
		rating, err := parseRating(line, sep, minRating, maxRating)
		if err != nil {
			return n, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput, err, "ratings: line %d", lineNo)
		}
		s.Add(rating)
		n++
	}
	if err := sc.Err(); err != nil {
		return n, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeUnavailable, err, "ratings: read input")
	}
	return n, nil
}

func parseRating(line, sep string, minRating, maxRating int) (core.Rating, error) {
	fields := strings.Split(line, sep)
	if len(fields) < 3 || len(fields) > 4 {
		return core.Rating{}, core.NewDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput,
			"expected 3 or 4 fields, got "+strconv.Itoa(len(fields)))
	}

	var (
		r   core.Rating
		err error
	)
	if r.UserID, err = parseID(fields[0], "user id"); err != nil {
		return r, err
	}
	if r.ItemID, err = parseID(fields[1], "item id"); err != nil {
		return r, err
	}
	if r.Rating, err = strconv.Atoi(strings.TrimSpace(fields[2])); err != nil {
		return r, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput, err, "rating")
	}
	if r.Rating < minRating || r.Rating > maxRating {
		return r, core.NewDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput,
			"rating "+strconv.Itoa(r.Rating)+" out of range ["+strconv.Itoa(minRating)+","+strconv.Itoa(maxRating)+"]")
	}
	if len(fields) == 4 {
		if r.Timestamp, err = strconv.ParseInt(strings.TrimSpace(fields[3]), 10, 64); err != nil {
			return r, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput, err, "timestamp")
		}
	}
	return r, nil
}

func parseID(s, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, core.WrapDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput, err, "%s", what)
	}
	if id <= 0 {
		return 0, core.NewDomainError(core.ModuleRatings, core.ErrorCodeInvalidInput, what+" must be positive")
	}
	return id, nil
}
