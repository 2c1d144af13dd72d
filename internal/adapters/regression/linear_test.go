package regression_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/agrocast/internal/adapters/regression"
	. "github.com/smartystreets/goconvey/convey"
)

func writeArtifact(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	ctx := context.Background()

	Convey("Given a valid YAML artifact", t, func() {
		path := writeArtifact(t, "irrigation.yaml", `
name: irrigation
features: [soil_moisture, temperature]
coefficients: [-0.25, 0.5]
intercept: 4
`)
		m, err := regression.Load(ctx, path)

		Convey("Then it loads and predicts intercept + coef·x", func() {
			So(err, ShouldBeNil)
			So(m.Name(), ShouldEqual, "irrigation")
			So(m.Features(), ShouldResemble, []string{"soil_moisture", "temperature"})
			So(m.Requires("temperature"), ShouldBeTrue)
			So(m.Requires("crop"), ShouldBeFalse)

			got, err := m.Predict(ctx, map[string]float64{"soil_moisture": 20, "temperature": 30, "ignored": 99})
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 14.0) // 4 - 5 + 15
		})

		Convey("And a missing feature is reported", func() {
			_, err := m.Predict(ctx, map[string]float64{"soil_moisture": 20})
			So(errors.Is(err, regression.ErrMissingFeature), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "temperature")
		})

		Convey("And a cancelled context stops the prediction", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := m.Predict(cctx, map[string]float64{"soil_moisture": 1, "temperature": 1})
			So(errors.Is(err, context.Canceled), ShouldBeTrue)
		})

		Convey("And the name can be overridden", func() {
			named, err := regression.Load(ctx, path, regression.WithName("irrigation-v2"))
			So(err, ShouldBeNil)
			So(named.Name(), ShouldEqual, "irrigation-v2")
		})
	})

	Convey("Given a JSON artifact", t, func() {
		path := writeArtifact(t, "yield.json", `{"name":"yield","features":["rainfall","temperature","fertilizer","crop"],"coefficients":[0.01,-0.02,0.03,0.5],"intercept":1.5}`)
		m, err := regression.Load(ctx, path, regression.WithRequiredFeatures("rainfall", "crop"))

		So(err, ShouldBeNil)
		got, err := m.Predict(ctx, map[string]float64{"rainfall": 100, "temperature": 25, "fertilizer": 50, "crop": 1})
		So(err, ShouldBeNil)
		So(got, ShouldAlmostEqual, 4.0, 1e-9) // 1.5 + 1 - 0.5 + 1.5 + 0.5
	})

	Convey("Given broken artifacts", t, func() {
		Convey("When the file does not exist", func() {
			_, err := regression.Load(ctx, filepath.Join(t.TempDir(), "missing.yaml"))
			So(errors.Is(err, regression.ErrArtifactNotFound), ShouldBeTrue)
		})

		Convey("When the document is not YAML", func() {
			_, err := regression.Load(ctx, writeArtifact(t, "bad.yaml", "features: [a, b"))
			So(errors.Is(err, regression.ErrInvalidArtifact), ShouldBeTrue)
		})

		Convey("When coefficients and features disagree", func() {
			_, err := regression.Load(ctx, writeArtifact(t, "short.yaml", "features: [a, b]\ncoefficients: [1]\n"))
			So(errors.Is(err, regression.ErrInvalidArtifact), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "1 coefficients for 2 features")
		})

		Convey("When no features are declared", func() {
			_, err := regression.Load(ctx, writeArtifact(t, "empty.yaml", "name: x\nintercept: 1\n"))
			So(errors.Is(err, regression.ErrInvalidArtifact), ShouldBeTrue)
		})

		Convey("When a required feature is absent", func() {
			path := writeArtifact(t, "irr.yaml", "features: [soil_moisture]\ncoefficients: [1]\n")
			_, err := regression.Load(ctx, path, regression.WithRequiredFeatures("temperature"))
			So(errors.Is(err, regression.ErrInvalidArtifact), ShouldBeTrue)
			So(err.Error(), ShouldContainSubstring, "temperature")
		})
	})
}

func TestNewLinear(t *testing.T) {
	Convey("Given in-memory parameters", t, func() {
		Convey("When they are consistent", func() {
			m, err := regression.NewLinear("irrigation", []string{"soil_moisture", "temperature"}, []float64{0, 1}, 0)
			So(err, ShouldBeNil)
			got, err := m.Predict(context.Background(), map[string]float64{"soil_moisture": 3, "temperature": 7})
			So(err, ShouldBeNil)
			So(got, ShouldEqual, 7.0)
		})

		Convey("When features repeat", func() {
			_, err := regression.NewLinear("x", []string{"a", "a"}, []float64{1, 1}, 0)
			So(errors.Is(err, regression.ErrInvalidArtifact), ShouldBeTrue)
		})
	})
}
