package yield_test

import (
	"testing"

	"github.com/okian/agrocast/internal/domain/crop"
	"github.com/okian/agrocast/internal/domain/yield"
	. "github.com/smartystreets/goconvey/convey"
)

func TestFeatures(t *testing.T) {
	Convey("Given yield inputs without a crop", t, func() {
		f := yield.Features(120, 28.5, 50, nil)

		Convey("Then only the three weather and input features are present", func() {
			So(f, ShouldHaveLength, 3)
			So(f[yield.FeatureRainfall], ShouldEqual, 120.0)
			So(f[yield.FeatureTemperature], ShouldEqual, 28.5)
			So(f[yield.FeatureFertilizer], ShouldEqual, 50.0)
		})
	})

	Convey("Given yield inputs with a crop", t, func() {
		c := crop.Maize
		f := yield.Features(80, 22, 40, &c)

		Convey("Then the crop code is added", func() {
			So(f, ShouldHaveLength, 4)
			So(f[yield.FeatureCrop], ShouldEqual, 2.0)
		})
	})
}

func TestRound(t *testing.T) {
	Convey("Given a raw yield", t, func() {
		So(yield.Round(3.14159), ShouldEqual, 3.14)
		So(yield.Round(2.999), ShouldEqual, 3.0)
		So(yield.Round(4.125), ShouldEqual, 4.12)
	})
}
