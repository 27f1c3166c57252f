package settings

import (
	"testing"

	"github.com/aether-player/aether/filesystem"
	"github.com/samber/lo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestStore(t *testing.T) {
	Convey("Given a settings store on an empty filesystem", t, func() {
		filesystem.SetMemMapFs()
		store := Store{VolumePath: "/state/volume.txt", EnhancementPath: "/state/audio-enhancement.txt"}
		known := func(s string) bool { return s == "off" || s == "natural" }

		Convey("Defaults are returned when nothing is saved", func() {
			So(store.LoadVolume(70, 50), ShouldEqual, 50)
			So(store.LoadPreset(known, "off"), ShouldEqual, "off")
		})

		Convey("A saved volume above the startup cap is capped", func() {
			So(store.SaveVolume(95), ShouldBeNil)
			So(store.LoadVolume(70, 50), ShouldEqual, 70)
		})

		Convey("A saved volume below the cap is kept", func() {
			So(store.SaveVolume(42), ShouldBeNil)
			So(store.LoadVolume(70, 50), ShouldEqual, 42)
			So(string(lo.Must(filesystem.API().ReadFile("/state/volume.txt"))), ShouldEqual, "42")
		})

		Convey("A malformed volume falls back", func() {
			lo.Must0(filesystem.API().WriteFile("/state/volume.txt", []byte("loud"), 0o644))
			So(store.LoadVolume(70, 50), ShouldEqual, 50)
		})

		Convey("Presets round trip and unknown ones are ignored", func() {
			So(store.SavePreset("natural"), ShouldBeNil)
			So(store.LoadPreset(known, "off"), ShouldEqual, "natural")

			So(store.SavePreset("bogus"), ShouldBeNil)
			So(store.LoadPreset(known, "off"), ShouldEqual, "off")
		})
	})
}
