package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomodtracker/modplayer"
	"github.com/gomodtracker/modplayer/cmd/internal/config"
	"github.com/gomodtracker/modplayer/cmd/modplay/tui"
	"github.com/gomodtracker/modplayer/internal/comb"
	"github.com/gordonklaus/portaudio"
)

var (
	flagHz       = flag.Int("hz", 44100, "output hz")
	flagStartOrd = flag.Int("start", 0, "starting pattern-table position; out-of-range values start from 0")
	flagReverb   = flag.String("reverb", "light", "reverb setting: none, light, medium, silly")
	flagNoUI     = flag.Bool("no-ui", false, "disable the terminal UI, just play audio")
	flagTui      = flag.Bool("tui", false, "use the full-screen bubbletea dashboard instead of the inline display")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("modplay: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("Missing MOD filename")
	}

	songFName := flag.Arg(0)
	songF, err := os.ReadFile(songFName)
	if err != nil {
		log.Fatal(err)
	}

	var song *modplayer.Song
	switch strings.ToLower(filepath.Ext(songFName)) {
	case ".s3m":
		song, err = modplayer.ReadS3M(songF)
	default:
		song, err = modplayer.ReadModule(songF)
	}
	if err != nil {
		log.Fatal(err)
	}

	player, err := modplayer.NewPlayer(song, *flagHz)
	if err != nil {
		log.Fatal(err)
	}
	start := *flagStartOrd
	if start < 0 || start >= song.NumUsedPatterns {
		start = 0
	}
	player.SeekTo(start, 0)

	reverb, err := config.ReverbFromFlag(*flagReverb, *flagHz)
	if err != nil {
		log.Fatal(err)
	}

	if *flagTui {
		if err := runTui(player, reverb); err != nil {
			log.Fatal(err)
		}
		return
	}

	play(player, reverb)
}

// runTui drives audio the same way play() does but hands the terminal
// to the bubbletea dashboard instead of the inline ANSI renderer, so the
// two UIs never fight over keyboard input.
func runTui(player *modplayer.Player, reverb comb.Reverber) error {
	stream, err := startAudioStream(player, reverb, *flagHz)
	if err != nil {
		return err
	}
	defer func() {
		stream.Stop()
		stream.Close()
		portaudio.Terminate()
	}()

	return tui.Run(player, player.Song)
}
