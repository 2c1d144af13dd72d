package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestLoggerInit(t *testing.T) {
	err := Init()
	if err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestLoggerOutput(t *testing.T) {
	Convey("Given a logger writing to a buffer", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf, "text"), ShouldBeNil)
		ctx := context.Background()

		Convey("When logging with fields", func() {
			Get().Info(ctx, "weather fetched", String("city", "Delhi"), Float64("temp", 31.5))

			Convey("Then the fields and caller are rendered", func() {
				out := buf.String()
				So(out, ShouldContainSubstring, "weather fetched")
				So(out, ShouldContainSubstring, "city=Delhi")
				So(out, ShouldContainSubstring, "temp=31.5")
				So(out, ShouldContainSubstring, "logger_test.go")
			})
		})

		Convey("When the context carries a request id", func() {
			rctx := WithRequestID(ctx, "req-42")
			Get().Warn(rctx, "slow upstream", Error(errors.New("boom")))

			Convey("Then the id is attached to the record", func() {
				So(buf.String(), ShouldContainSubstring, "request_id=req-42")
				So(buf.String(), ShouldContainSubstring, "error=boom")
				So(RequestID(rctx), ShouldEqual, "req-42")
			})
		})

		Convey("When using a named logger", func() {
			Named("weather").Info(ctx, "hello")

			Convey("Then the component is recorded", func() {
				So(buf.String(), ShouldContainSubstring, "component=weather")
			})
		})

		Convey("When the level is raised", func() {
			So(SetLevelString("error"), ShouldBeNil)
			Get().Info(ctx, "hidden")
			Get().Error(ctx, "shown")
			_ = SetLevelString("info")

			Convey("Then lower records are dropped", func() {
				So(strings.Contains(buf.String(), "hidden"), ShouldBeFalse)
				So(buf.String(), ShouldContainSubstring, "shown")
			})
		})
	})
}

func TestLoggerJSON(t *testing.T) {
	Convey("Given a JSON logger", t, func() {
		var buf bytes.Buffer
		So(InitWithWriter(&buf, "json"), ShouldBeNil)

		Get().Info(context.Background(), "ready", Bool("models_loaded", true))

		So(buf.String(), ShouldContainSubstring, `"models_loaded":true`)
		So(buf.String(), ShouldContainSubstring, `"msg":"ready"`)
	})

	Convey("Given an unknown format", t, func() {
		So(InitWithWriter(&bytes.Buffer{}, "xml"), ShouldNotBeNil)
		_ = Init()
	})
}

func TestSetLevelString(t *testing.T) {
	Convey("Given level strings", t, func() {
		for _, lvl := range []string{"debug", "INFO", "warn", "warning", "error", ""} {
			So(SetLevelString(lvl), ShouldBeNil)
		}
		So(SetLevelString("verbose"), ShouldNotBeNil)
		_ = SetLevelString("info")
	})
}
