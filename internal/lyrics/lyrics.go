package lyrics

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"lyricbench/pkg/timing"
)

// DefaultTail is how long the last line stays active when nothing follows it.
const DefaultTail int64 = 5000

// ErrNoTimedLines is returned when LRC input contains no timestamped lines.
var ErrNoTimedLines = errors.New("lyrics: no timed lines")

var (
	tagRe    = regexp.MustCompile(`\[(\d{1,3}):(\d{2})(?:[.:](\d{1,3}))?\]`)
	offsetRe = regexp.MustCompile(`^\[offset:\s*([+-]?\d+)\s*\]`)
)

type stamp struct {
	ms   int64
	text string
}

// ParseLRC turns LRC text into a corpus sorted by begin. Every line ends where
// the next one begins, so consecutive lines abut; the last line lasts tail ms.
// A line carrying several time tags is emitted once per tag. An [offset:]
// header shifts every timestamp; results are clamped at 0.
func ParseLRC(lrc string, tail int64) ([]timing.Line, error) {
	if tail < 0 {
		tail = DefaultTail
	}

	scanner := bufio.NewScanner(strings.NewReader(lrc))
	var (
		stamps []stamp
		offset int64
	)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if m := offsetRe.FindStringSubmatch(line); m != nil {
			// offset 为正时歌词提前显示
			v, _ := strconv.ParseInt(m[1], 10, 64)
			offset = v
			continue
		}

		locs := tagRe.FindAllStringSubmatchIndex(line, -1)
		if len(locs) == 0 || locs[0][0] != 0 {
			continue
		}
		// 时间标签必须在行首且相邻
		textStart := 0
		var times []int64
		for _, loc := range locs {
			if loc[0] != textStart {
				break
			}
			times = append(times, tagMillis(line, loc))
			textStart = loc[1]
		}
		text := strings.TrimSpace(line[textStart:])
		for _, ms := range times {
			stamps = append(stamps, stamp{ms: ms, text: text})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("lyrics: scan: %w", err)
	}
	if len(stamps) == 0 {
		return nil, ErrNoTimedLines
	}

	sort.SliceStable(stamps, func(i, j int) bool { return stamps[i].ms < stamps[j].ms })

	lines := make([]timing.Line, len(stamps))
	for i, s := range stamps {
		begin := max(s.ms-offset, 0)
		end := begin + tail
		if i+1 < len(stamps) {
			end = max(stamps[i+1].ms-offset, begin)
		}
		lines[i] = timing.NewLine(begin, end, s.text)
	}
	return lines, nil
}

// LoadFile reads and parses an .lrc file.
func LoadFile(path string, tail int64) ([]timing.Line, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lyrics: read %s: %w", path, err)
	}
	lines, err := ParseLRC(string(data), tail)
	if err != nil {
		return nil, fmt.Errorf("lyrics: parse %s: %w", path, err)
	}
	return lines, nil
}

func tagMillis(line string, loc []int) int64 {
	minutes, _ := strconv.ParseInt(line[loc[2]:loc[3]], 10, 64)
	seconds, _ := strconv.ParseInt(line[loc[4]:loc[5]], 10, 64)
	var frac int64
	if loc[6] >= 0 {
		digits := line[loc[6]:loc[7]]
		frac, _ = strconv.ParseInt(digits, 10, 64)
		// 根据毫秒字符串的长度来正确处理毫秒值
		switch len(digits) {
		case 1:
			frac *= 100 // 1位数时，如 .1 表示 100ms
		case 2:
			frac *= 10 // 2位数时，如 .49 表示 490ms
		}
	}
	return (minutes*60+seconds)*1000 + frac
}
