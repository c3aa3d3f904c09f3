// Package player 通过 playerctl 读取桌面播放器的播放状态
package player

import (
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// CurrentSong 获取当前歌曲，格式为 "artist - title"
func CurrentSong() (string, error) {
	cmd := exec.Command("playerctl", "metadata", "--format", `{{artist}} - {{title}}`)
	output, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(output)), nil
}

// Position 获取播放进度（毫秒），没有播放器时返回 -1
func Position() int64 {
	out, err := exec.Command("playerctl", "position").Output()
	if err != nil {
		return -1
	}
	ms, err := parsePosition(string(out))
	if err != nil {
		return -1
	}
	return ms
}

// parsePosition 把 playerctl 输出的秒数转换为毫秒
func parsePosition(s string) (int64, error) {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("player: invalid position %q", s)
	}
	return int64(math.Round(seconds * 1000)), nil
}
