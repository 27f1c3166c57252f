package where

import (
	"path/filepath"
	"testing"

	"github.com/aether-player/aether/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestPaths(t *testing.T) {
	Convey("Path functions", t, func() {
		Convey("Config()", func() {
			path := Config()
			So(path, ShouldNotBeEmpty)
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("Logs()", func() {
			path := Logs()
			So(lo.Must(filesystem.API().IsDir(path)), ShouldBeTrue)
		})

		Convey("State files live in the state directory", func() {
			So(filepath.Dir(Volume()), ShouldEqual, State())
			So(filepath.Dir(Enhancement()), ShouldEqual, State())
			So(lo.Must(filesystem.API().IsDir(State())), ShouldBeTrue)
		})

		Convey("Socket() is inside Temp()", func() {
			So(filepath.Dir(Socket()), ShouldEqual, Temp())
		})

		Convey("Config path can be overridden", func() {
			t.Setenv(EnvConfigPath, "/custom/aether")
			So(Config(), ShouldEqual, "/custom/aether")
			So(lo.Must(filesystem.API().IsDir("/custom/aether")), ShouldBeTrue)
		})
	})
}
