package stats_test

import (
	"testing"

	stats "github.com/camr1993/fantasy-football-assistant-sub000/internal/domain/stats"
	. "github.com/smartystreets/goconvey/convey"
)

func TestRollingAverage(t *testing.T) {
	Convey("Given a season of weekly values", t, func() {
		byWeek := map[int]float64{1: 10, 2: 20, 3: 30, 4: 40, 5: 50}

		Convey("Week 1 equals the raw value", func() {
			So(stats.RollingAverage(byWeek, 1, 3), ShouldEqual, 10)
		})

		Convey("Week 2 averages weeks 1-2", func() {
			So(stats.RollingAverage(byWeek, 2, 3), ShouldEqual, 15)
		})

		Convey("Week 4 equals the mean of weeks 2-4", func() {
			So(stats.RollingAverage(byWeek, 4, 3), ShouldEqual, 30)
		})

		Convey("The window shrinks near the season start instead of zero-padding", func() {
			So(stats.RollingAverage(byWeek, 3, 3), ShouldEqual, 20)
		})

		Convey("Missing weeks inside the window are skipped", func() {
			sparse := map[int]float64{2: 20, 4: 40}
			So(stats.RollingAverage(sparse, 4, 3), ShouldEqual, 30)
		})
	})
}

func TestZScores(t *testing.T) {
	Convey("Given a population of values", t, func() {
		Convey("Scores are centered on the population mean", func() {
			out := stats.ZScores([]float64{10, 20, 30})
			So(out[1], ShouldEqual, 0)
			So(out[0], ShouldBeLessThan, 0)
			So(out[2], ShouldBeGreaterThan, 0)
			So(out[0], ShouldEqual, -out[2])
		})

		Convey("A zero-std population normalizes to 0, not NaN", func() {
			out := stats.ZScores([]float64{7, 7, 7})
			for _, v := range out {
				So(v, ShouldEqual, 0)
			}
		})
	})
}

func TestMinMax(t *testing.T) {
	Convey("Given a population of values", t, func() {
		Convey("Values rescale into [0,1]", func() {
			out := stats.MinMax([]float64{5, 10, 15})
			So(*out[0], ShouldEqual, 0)
			So(*out[1], ShouldEqual, 0.5)
			So(*out[2], ShouldEqual, 1)
		})

		Convey("A zero range yields nil for every row", func() {
			out := stats.MinMax([]float64{3, 3, 3})
			for _, v := range out {
				So(v, ShouldBeNil)
			}
		})
	})
}

func TestRounding(t *testing.T) {
	Convey("Storage precisions are stable", t, func() {
		So(stats.Round2(1.005), ShouldEqual, 1.0) // 1.005 is 1.00499... in binary
		So(stats.Round2(12.345), ShouldEqual, 12.35)
		So(stats.Round3(0.12345), ShouldEqual, 0.123)
		So(stats.Round3(-1.23456), ShouldEqual, -1.235)
	})
}

func TestWeightedScore(t *testing.T) {
	Convey("Given normalized metrics and weights", t, func() {
		one := 1.0
		half := 0.5
		norm := map[string]*float64{
			"points":    &one,
			"turnovers": &half,
			"flat":      nil,
		}
		weights := map[string]float64{"points": 2.0}

		Convey("Nil entries are skipped and unknown metrics use the default", func() {
			got := stats.WeightedScore(norm, weights, 1.0)
			So(got, ShouldEqual, 2.5)
		})
	})
}
