package app

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/rs/zerolog/log"

	"lyricbench/pkg/timing"
)

const replayTick = 50 * time.Millisecond

// Clock 返回播放进度（毫秒）
type Clock func() int64

// WallClock 从 start 开始计时，按 speed 倍速前进
func WallClock(start int64, speed float64) Clock {
	began := time.Now()
	return func() int64 {
		return start + int64(float64(time.Since(began).Milliseconds())*speed)
	}
}

// Replay 每个 tick 读取一次播放进度，当前歌词变化时调用 emit。
// 歌词间隙保持显示上一句，第一句开始之前不输出。
// 播放进度超过最后一句结束时间或 ctx 取消时退出。
func Replay(ctx context.Context, lines []timing.Line, clock Clock, tick time.Duration, emit func(pos int64, active []timing.Line)) error {
	if len(lines) == 0 {
		return errors.New("app: nothing to replay")
	}
	if tick <= 0 {
		tick = replayTick
	}
	logger := log.With().Str("component", "replay").Logger()
	nav := timing.NewNavigator(lines)
	end := lines[len(lines)-1].End()

	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	var last []timing.Line
	logger.Info().Int("lines", len(lines)).Int64("end_ms", end).Msg("Replay started")
	for {
		pos := clock()
		if pos < 0 {
			logger.Warn().Int64("position", pos).Msg("Invalid player time")
		} else {
			var active []timing.Line
			nav.LookupOrPrevious(pos, func(l timing.Line) { active = append(active, l) })
			if !slices.Equal(active, last) {
				emit(pos, active)
				last = active
			}
			if pos > end {
				logger.Info().Int64("position", pos).Msg("Song finished")
				return nil
			}
		}

		select {
		case <-ctx.Done():
			logger.Info().Msg("Replay cancelled")
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
