package placement_test

import (
	"errors"
	"testing"

	"github.com/okian/lingua/internal/domain/level"
	"github.com/okian/lingua/internal/domain/model"
	"github.com/okian/lingua/internal/domain/placement"
	. "github.com/smartystreets/goconvey/convey"
)

func withBand(skill model.Skill, b level.Band) model.SkillResult {
	return model.SkillResult{Skill: skill, BandScore: b, Level: level.BandToLevel(b)}
}

func TestAggregate(t *testing.T) {
	Convey("Given the multi-skill aggregator", t, func() {
		Convey("When there are no results", func() {
			_, err := placement.Aggregate(nil)
			Convey("Then it fails with ErrEmpty", func() {
				So(errors.Is(err, placement.ErrEmpty), ShouldBeTrue)
			})
		})

		Convey("When there is a single result", func() {
			for _, b := range []level.Band{4.5, 5.0, 6.5, 7.0, 8.5} {
				res, err := placement.Aggregate([]model.SkillResult{withBand(model.Reading, b)})
				So(err, ShouldBeNil)
				So(res.OverallBand, ShouldEqual, b)
				So(res.OverallLevel, ShouldEqual, level.BandToLevel(b))
			}
		})

		Convey("When bands are 7.0, 6.5 and 5.5", func() {
			res, err := placement.Aggregate([]model.SkillResult{
				withBand(model.Listening, 7.0),
				withBand(model.Reading, 6.5),
				withBand(model.Writing, 5.5),
			})
			Convey("Then the mean 6.33 rounds to 6.5 (B2)", func() {
				So(err, ShouldBeNil)
				So(res.OverallBand, ShouldEqual, level.Band(6.5))
				So(res.OverallLevel, ShouldEqual, level.B2)
				So(len(res.Results), ShouldEqual, 3)
			})
		})

		Convey("When the mean lands exactly on a quarter", func() {
			res, err := placement.Aggregate([]model.SkillResult{
				withBand(model.Listening, 6.0),
				withBand(model.Reading, 6.5),
			})
			Convey("Then it rounds half up", func() {
				So(err, ShouldBeNil)
				So(res.OverallBand, ShouldEqual, level.Band(6.5))
			})
		})
	})
}

func TestAssess(t *testing.T) {
	Convey("Given single-skill assessment", t, func() {
		Convey("When the raw percent is on a boundary", func() {
			r, err := placement.Assess(model.Speaking, 75)
			So(err, ShouldBeNil)
			So(r.BandScore, ShouldEqual, level.Band(7.0))
			So(r.Level, ShouldEqual, level.C1)
		})

		Convey("When the raw percent is out of range", func() {
			hi, err := placement.Assess(model.Reading, 140)
			So(err, ShouldBeNil)
			So(hi.RawScorePercent, ShouldEqual, 100.0)
			lo, err := placement.Assess(model.Reading, -5)
			So(err, ShouldBeNil)
			So(lo.RawScorePercent, ShouldEqual, 0.0)
			So(lo.BandScore, ShouldEqual, level.FloorBand)
		})

		Convey("When the skill is unknown", func() {
			_, err := placement.Assess(model.Skill("grammar"), 50)
			So(errors.Is(err, placement.ErrInvalidSkill), ShouldBeTrue)
		})
	})
}

func TestPlace(t *testing.T) {
	Convey("Given a placement test", t, func() {
		Convey("When all four skills are scored", func() {
			res, err := placement.Place([]placement.Score{
				{Skill: "Listening", RawScorePercent: 82},
				{Skill: "reading", RawScorePercent: 71},
				{Skill: "writing", RawScorePercent: 58},
				{Skill: "speaking", RawScorePercent: 66},
			})
			Convey("Then each skill is mapped and the bands aggregated", func() {
				So(err, ShouldBeNil)
				So(res.Results[0].Skill, ShouldEqual, model.Listening)
				So(res.Results[0].BandScore, ShouldEqual, level.Band(7.5))
				So(res.Results[1].BandScore, ShouldEqual, level.Band(6.5))
				So(res.Results[2].BandScore, ShouldEqual, level.Band(5.0))
				So(res.Results[3].BandScore, ShouldEqual, level.Band(6.0))
				// mean 6.25 -> 6.5
				So(res.OverallBand, ShouldEqual, level.Band(6.5))
				So(res.OverallLevel, ShouldEqual, level.B2)
			})
		})

		Convey("When a skill is repeated", func() {
			_, err := placement.Place([]placement.Score{
				{Skill: model.Reading, RawScorePercent: 60},
				{Skill: "READING", RawScorePercent: 70},
			})
			So(errors.Is(err, placement.ErrDuplicateSkill), ShouldBeTrue)
		})

		Convey("When nothing is submitted", func() {
			_, err := placement.Place(nil)
			So(errors.Is(err, placement.ErrEmpty), ShouldBeTrue)
		})
	})
}
