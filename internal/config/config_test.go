package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/nourish/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNew(t *testing.T) {
	Convey("Given the default configuration", t, func() {
		cfg := config.New()

		Convey("Then it should carry sane defaults", func() {
			So(cfg.LogLevel, ShouldEqual, "info")
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.ArtifactsPath, ShouldEqual, "nourish_models.gob")
			So(cfg.QueueSize, ShouldEqual, 100_000)
			So(cfg.WorkerCount, ShouldBeGreaterThan, 0)
			So(cfg.DedupeSize, ShouldEqual, 50_000)
			So(cfg.ShardCount, ShouldEqual, 8)
			So(cfg.MaxListLimit, ShouldEqual, 1000)
		})
	})
}

func TestLoad(t *testing.T) {
	Convey("Given the layered config loader", t, func() {
		ctx := context.Background()

		// Each scenario sets its own variables; clear them so earlier
		// scenarios cannot leak into later ones.
		for _, key := range []string{
			"NOURISH_CONFIG", "NOURISH_ADDR", "NOURISH_LOG_LEVEL",
			"NOURISH_QUEUE_SIZE", "NOURISH_WORKER_COUNT", "NOURISH_MAX_LIST_LIMIT",
		} {
			t.Setenv(key, "")
			So(os.Unsetenv(key), ShouldBeNil)
		}

		Convey("When nothing is overridden", func() {
			cfg, err := config.Load(ctx)

			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":8080")
			So(cfg.QueueSize, ShouldEqual, 100_000)
		})

		Convey("When environment variables are set", func() {
			t.Setenv("NOURISH_ADDR", ":9090")
			t.Setenv("NOURISH_QUEUE_SIZE", "500")
			t.Setenv("NOURISH_LOG_LEVEL", "debug")

			cfg, err := config.Load(ctx)

			So(err, ShouldBeNil)

			Convey("Then they should override the defaults", func() {
				So(cfg.Addr, ShouldEqual, ":9090")
				So(cfg.QueueSize, ShouldEqual, 500)
				So(cfg.LogLevel, ShouldEqual, "debug")

				Convey("And untouched fields should keep their defaults", func() {
					So(cfg.ShardCount, ShouldEqual, 8)
				})
			})
		})

		Convey("When a YAML config file is provided", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "nourish.yaml")
			yaml := "addr: \":7070\"\nworker_count: 3\nmax_list_limit: 250\n"
			So(os.WriteFile(path, []byte(yaml), 0o600), ShouldBeNil)
			t.Setenv("NOURISH_CONFIG", path)

			cfg, err := config.Load(ctx)

			So(err, ShouldBeNil)
			So(cfg.Addr, ShouldEqual, ":7070")
			So(cfg.WorkerCount, ShouldEqual, 3)
			So(cfg.MaxListLimit, ShouldEqual, 250)

			Convey("And environment variables should win over the file", func() {
				t.Setenv("NOURISH_ADDR", ":6060")

				cfg2, err2 := config.Load(ctx)
				So(err2, ShouldBeNil)
				So(cfg2.Addr, ShouldEqual, ":6060")
				So(cfg2.WorkerCount, ShouldEqual, 3)
			})
		})

		Convey("When the config file does not exist", func() {
			t.Setenv("NOURISH_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))

			_, err := config.Load(ctx)

			So(errors.Is(err, config.ErrLoadConfig), ShouldBeTrue)
		})

		Convey("When a value violates an invariant", func() {
			t.Setenv("NOURISH_QUEUE_SIZE", "0")

			_, err := config.Load(ctx)

			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})

		Convey("When the listen address is cleared", func() {
			t.Setenv("NOURISH_ADDR", "")

			_, err := config.Load(ctx)

			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
