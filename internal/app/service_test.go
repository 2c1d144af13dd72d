package service_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/agrocast/internal/adapters/regression"
	"github.com/okian/agrocast/internal/adapters/weather"
	service "github.com/okian/agrocast/internal/app"
	"github.com/okian/agrocast/internal/domain/crop"
	"github.com/okian/agrocast/internal/domain/irrigation"
	"github.com/okian/agrocast/internal/domain/model"
	"github.com/okian/agrocast/pkg/logger"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

type fakeWeather struct {
	snap  model.WeatherSnapshot
	err   error
	calls atomic.Int32
}

func (f *fakeWeather) Current(_ context.Context, city string) (model.WeatherSnapshot, error) {
	f.calls.Add(1)
	if f.err != nil {
		return model.WeatherSnapshot{}, f.err
	}
	s := f.snap
	s.City = city
	return s, nil
}

func ptr(v float64) *float64 { return &v }

// irrigationModel yields raw = soil_moisture / 2.
func irrigationModel() regression.Predictor {
	m, err := regression.NewLinear("irrigation", []string{"soil_moisture", "temperature"}, []float64{0.5, 0}, 0)
	So(err, ShouldBeNil)
	return m
}

func yieldModel(withCrop bool) regression.Predictor {
	features := []string{"rainfall", "temperature", "fertilizer"}
	coefs := []float64{0.01, 0.05, 0.02}
	if withCrop {
		features = append(features, "crop")
		coefs = append(coefs, 0.5)
	}
	m, err := regression.NewLinear("yield", features, coefs, 1)
	So(err, ShouldBeNil)
	return m
}

func startedService(w weather.Provider, yieldWithCrop bool) *service.Service {
	svc := service.New(
		service.WithWeather(w),
		service.WithIrrigationModel(irrigationModel()),
		service.WithYieldModel(yieldModel(yieldWithCrop)),
	)
	So(svc.Start(context.Background()), ShouldBeNil)
	return svc
}

func writeArtifact(dir, name, body string) string {
	p := filepath.Join(dir, name)
	So(os.WriteFile(p, []byte(body), 0o600), ShouldBeNil)
	return p
}

func TestService_Start(t *testing.T) {
	Convey("Given a service without a weather provider", t, func() {
		svc := service.New()

		Convey("Then Start refuses", func() {
			So(errors.Is(svc.Start(context.Background()), service.ErrNotReady), ShouldBeTrue)
			So(svc.Ready(), ShouldBeFalse)
		})
	})

	Convey("Given model artifacts on disk", t, func() {
		dir := t.TempDir()
		irr := writeArtifact(dir, "irrigation.yaml", "name: irr\nfeatures: [soil_moisture, temperature]\ncoefficients: [0.5, 0]\nintercept: 0\n")
		yld := writeArtifact(dir, "yield.yaml", "name: yld\nfeatures: [rainfall, temperature, fertilizer, crop]\ncoefficients: [0.01, 0.05, 0.02, 0.5]\nintercept: 1\n")

		Convey("When starting with both paths", func() {
			svc := service.New(service.WithWeather(&fakeWeather{}), service.WithModelPaths(irr, yld))
			err := svc.Start(context.Background())

			Convey("Then the service is ready until stopped", func() {
				So(err, ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)
				So(svc.Start(context.Background()), ShouldBeNil)
				stats := svc.GetStats()
				So(stats["started"], ShouldBeTrue)
				So(stats["yieldFeatures"], ShouldResemble, []string{"rainfall", "temperature", "fertilizer", "crop"})

				svc.Stop()
				So(svc.Ready(), ShouldBeFalse)
				svc.Stop()
			})
		})

		Convey("When the irrigation artifact is missing", func() {
			svc := service.New(service.WithWeather(&fakeWeather{}), service.WithModelPaths(filepath.Join(dir, "nope.yaml"), yld))
			err := svc.Start(context.Background())

			Convey("Then Start fails and the service is not ready", func() {
				So(errors.Is(err, regression.ErrArtifactNotFound), ShouldBeTrue)
				So(svc.Ready(), ShouldBeFalse)
			})
		})

		Convey("When the irrigation artifact lacks soil moisture", func() {
			bad := writeArtifact(dir, "bad.yaml", "features: [temperature]\ncoefficients: [1]\nintercept: 0\n")
			svc := service.New(service.WithWeather(&fakeWeather{}), service.WithModelPaths(bad, yld))

			So(errors.Is(svc.Start(context.Background()), regression.ErrInvalidArtifact), ShouldBeTrue)
		})

		Convey("When one model is injected and the other is read from disk", func() {
			svc := service.New(
				service.WithWeather(&fakeWeather{}),
				service.WithIrrigationModel(irrigationModel()),
				service.WithModelPaths(filepath.Join(dir, "absent.yaml"), yld),
			)
			So(svc.Start(context.Background()), ShouldBeNil)

			Convey("Then a restart keeps the injected model and reloads the other", func() {
				svc.Stop()
				So(svc.Ready(), ShouldBeFalse)
				So(svc.Start(context.Background()), ShouldBeNil)
				So(svc.Ready(), ShouldBeTrue)

				stats := svc.GetStats()
				So(stats["irrigationFeatures"], ShouldResemble, []string{"soil_moisture", "temperature"})
				So(stats["yieldFeatures"], ShouldResemble, []string{"rainfall", "temperature", "fertilizer", "crop"})
			})
		})
	})
}

func TestService_PredictIrrigation(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()

		Convey("When it is cool and humid and the crop is rice", func() {
			w := &fakeWeather{snap: model.WeatherSnapshot{Temperature: 15, Humidity: ptr(70), Condition: "overcast clouds"}}
			svc := startedService(w, true)

			res, err := svc.PredictIrrigation(ctx, model.IrrigationRequest{SoilMoisture: 20, Crop: "Rice", City: "Pune"})

			Convey("Then the raw estimate is scaled by crop, temperature and humidity", func() {
				So(err, ShouldBeNil)
				So(res.RecommendedWaterMM, ShouldEqual, 7.28)
				So(res.Reason, ShouldEqual, "Low temperature, High humidity")
				So(*res.Crop, ShouldEqual, crop.Rice)
				So(res.City, ShouldEqual, "Pune")
				So(res.Temperature, ShouldEqual, 15.0)
				So(*res.Humidity, ShouldEqual, 70.0)
				So(res.Weather, ShouldEqual, "overcast clouds")
				So(res.RainDetected, ShouldBeFalse)
			})
		})

		Convey("When rain is forecast", func() {
			w := &fakeWeather{snap: model.WeatherSnapshot{Temperature: 40, Humidity: ptr(10), Condition: "Light Rain"}}
			svc := startedService(w, true)

			res, err := svc.PredictIrrigation(ctx, model.IrrigationRequest{SoilMoisture: 50, Crop: "maize", City: "Pune"})

			Convey("Then no water is recommended", func() {
				So(err, ShouldBeNil)
				So(res.RecommendedWaterMM, ShouldEqual, 0.0)
				So(res.Reason, ShouldEqual, irrigation.ReasonRain)
				So(res.RainDetected, ShouldBeTrue)
				So(svc.GetStats()["rainShortCircuits"], ShouldEqual, int64(1))
			})
		})

		Convey("When no crop is given", func() {
			w := &fakeWeather{snap: model.WeatherSnapshot{Temperature: 25, Humidity: ptr(50), Condition: "clear sky"}}
			svc := startedService(w, true)

			res, err := svc.PredictIrrigation(ctx, model.IrrigationRequest{SoilMoisture: 30, City: "Pune"})

			Convey("Then no crop factor applies", func() {
				So(err, ShouldBeNil)
				So(res.Crop, ShouldBeNil)
				So(res.RecommendedWaterMM, ShouldEqual, 15.0)
				So(res.Reason, ShouldEqual, irrigation.ReasonOptimal)
			})
		})

		Convey("When the crop is unsupported", func() {
			w := &fakeWeather{snap: model.WeatherSnapshot{Temperature: 25}}
			svc := startedService(w, true)

			_, err := svc.PredictIrrigation(ctx, model.IrrigationRequest{SoilMoisture: 30, Crop: "banana", City: "Pune"})

			Convey("Then it is rejected before the weather lookup", func() {
				So(errors.Is(err, service.ErrInvalidCrop), ShouldBeTrue)
				So(w.calls.Load(), ShouldEqual, int32(0))
				So(svc.GetStats()["failedPredictions"], ShouldEqual, int64(1))
			})
		})

		Convey("When the city is blank", func() {
			w := &fakeWeather{}
			svc := startedService(w, true)

			_, err := svc.PredictIrrigation(ctx, model.IrrigationRequest{SoilMoisture: 30, City: " "})

			So(errors.Is(err, service.ErrInvalidInput), ShouldBeTrue)
			So(w.calls.Load(), ShouldEqual, int32(0))
		})

		Convey("When the weather lacks data", func() {
			w := &fakeWeather{err: fmt.Errorf("%w: city not found", weather.ErrDataUnavailable)}
			svc := startedService(w, true)

			_, err := svc.PredictIrrigation(ctx, model.IrrigationRequest{SoilMoisture: 30, City: "Atlantis"})

			So(errors.Is(err, service.ErrWeatherUnavailable), ShouldBeTrue)
		})

		Convey("When the weather provider is down", func() {
			w := &fakeWeather{err: weather.ErrUpstream}
			svc := startedService(w, true)

			_, err := svc.PredictIrrigation(ctx, model.IrrigationRequest{SoilMoisture: 30, City: "Pune"})

			So(errors.Is(err, service.ErrUpstream), ShouldBeTrue)
		})

		Convey("When the service was never started", func() {
			svc := service.New(service.WithWeather(&fakeWeather{}))

			_, err := svc.PredictIrrigation(ctx, model.IrrigationRequest{SoilMoisture: 30, City: "Pune"})

			So(errors.Is(err, service.ErrNotReady), ShouldBeTrue)
		})
	})
}

func TestService_PredictYield(t *testing.T) {
	Convey("Given a started service with a crop-aware yield model", t, func() {
		ctx := context.Background()
		w := &fakeWeather{snap: model.WeatherSnapshot{Temperature: 20, Humidity: ptr(55), Condition: "clear sky"}}
		svc := startedService(w, true)

		Convey("When predicting for rice", func() {
			res, err := svc.PredictYield(ctx, model.YieldRequest{Crop: "rice", Rainfall: 100, Fertilizer: 50, City: "Pune"})

			Convey("Then the model output is rounded and inputs echoed", func() {
				So(err, ShouldBeNil)
				So(res.PredictedYield, ShouldEqual, 4.5)
				So(*res.Crop, ShouldEqual, crop.Rice)
				So(res.Temperature, ShouldEqual, 20.0)
				So(res.Rainfall, ShouldEqual, 100.0)
				So(res.Fertilizer, ShouldEqual, 50.0)
				So(svc.GetStats()["yieldServed"], ShouldEqual, int64(1))
			})
		})

		Convey("When the crop is missing", func() {
			_, err := svc.PredictYield(ctx, model.YieldRequest{Rainfall: 100, Fertilizer: 50, City: "Pune"})

			Convey("Then the request is rejected without a lookup", func() {
				So(errors.Is(err, service.ErrMissingCrop), ShouldBeTrue)
				So(w.calls.Load(), ShouldEqual, int32(0))
			})
		})

		Convey("When the crop is unsupported", func() {
			_, err := svc.PredictYield(ctx, model.YieldRequest{Crop: "cotton", Rainfall: 100, Fertilizer: 50, City: "Pune"})

			So(errors.Is(err, service.ErrInvalidCrop), ShouldBeTrue)
			So(w.calls.Load(), ShouldEqual, int32(0))
		})
	})

	Convey("Given a yield model trained without crop", t, func() {
		w := &fakeWeather{snap: model.WeatherSnapshot{Temperature: 20}}
		svc := startedService(w, false)

		res, err := svc.PredictYield(context.Background(), model.YieldRequest{Rainfall: 100, Fertilizer: 50, City: "Pune"})

		So(err, ShouldBeNil)
		So(res.Crop, ShouldBeNil)
		So(res.PredictedYield, ShouldEqual, 4.0)
	})
}
