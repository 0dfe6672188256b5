package main

import (
	"fmt"
	"io"
	"time"

	"jmake/internal/buildpipeline"
	"jmake/internal/driver"
)

func printTimings(out io.Writer, sess *driver.Session, s *settings) {
	if out == nil || sess == nil || !s.timings {
		return
	}
	if _, err := io.WriteString(out, sess.Timer.Summary()); err != nil {
		panic(err)
	}
}

func printStageTimings(out io.Writer, timings buildpipeline.Timings, s *settings) {
	if out == nil || !s.timings {
		return
	}
	if timings.Has(buildpipeline.StageCompile) {
		if _, err := fmt.Fprintf(out, "compiled %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageCompile))); err != nil {
			panic(err)
		}
	}
	if timings.Has(buildpipeline.StageRun) {
		if _, err := fmt.Fprintf(out, "ran %.1f ms\n", toMillis(timings.Duration(buildpipeline.StageRun))); err != nil {
			panic(err)
		}
	}
}

func toMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
