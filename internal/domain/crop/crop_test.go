package crop_test

import (
	"errors"
	"testing"

	"github.com/okian/agrocast/internal/domain/crop"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParse(t *testing.T) {
	Convey("Given crop names", t, func() {
		Convey("When the name is known in any case", func() {
			for in, want := range map[string]crop.Crop{
				"wheat":   crop.Wheat,
				"RICE":    crop.Rice,
				" Maize ": crop.Maize,
			} {
				got, err := crop.Parse(in)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, want)
				So(got.Valid(), ShouldBeTrue)
			}
		})

		Convey("When the name is unknown", func() {
			_, err := crop.Parse("barley")

			Convey("Then ErrUnknownCrop is returned", func() {
				So(errors.Is(err, crop.ErrUnknownCrop), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "barley")
			})
		})

		Convey("When the name is empty", func() {
			_, err := crop.Parse("")
			So(errors.Is(err, crop.ErrUnknownCrop), ShouldBeTrue)
		})
	})
}

func TestConstants(t *testing.T) {
	Convey("Given the supported crops", t, func() {
		So(crop.Wheat.WaterFactor(), ShouldEqual, 1.0)
		So(crop.Rice.WaterFactor(), ShouldEqual, 1.3)
		So(crop.Maize.WaterFactor(), ShouldEqual, 0.9)

		So(crop.Wheat.Code(), ShouldEqual, 0)
		So(crop.Rice.Code(), ShouldEqual, 1)
		So(crop.Maize.Code(), ShouldEqual, 2)

		So(crop.All, ShouldHaveLength, 3)
		So(crop.Crop("barley").Valid(), ShouldBeFalse)
	})
}
