// modwav renders a MOD/S3M file to a WAV file (32-bit float, stereo),
// applying reverb the same way cmd/modplay's live output does.

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/gomodtracker/modplayer"
	"github.com/gomodtracker/modplayer/cmd/internal/config"
	"github.com/gomodtracker/modplayer/cmd/modwav/wav"
)

const outputHz = 44100

var (
	flagWavOut = flag.String("wav", "", "output WAV filename")
	flagReverb = flag.String("reverb", "light", "reverb setting: none, light, medium, silly")
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("modwav: ")
	flag.Parse()

	if len(flag.Args()) == 0 {
		log.Fatal("Missing MOD filename")
	}
	if *flagWavOut == "" {
		log.Fatal("No -wav option provided")
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

	player, err := modplayer.NewPlayer(song, outputHz)
	if err != nil {
		log.Fatal(err)
	}

	reverb, err := config.ReverbFromFlag(*flagReverb, outputHz)
	if err != nil {
		log.Fatal(err)
	}

	wavF, err := os.Create(*flagWavOut)
	if err != nil {
		log.Fatal(err)
	}
	defer wavF.Close()

	wavW, err := wav.NewWriter(wavF, outputHz)
	if err != nil {
		log.Fatal(err)
	}
	defer wavW.Finish()

	scratch := make([]float32, 2048)
	out := make([]float32, 2048)

	lastPosition := -1
	for !player.SongHasEnded {
		player.GenerateAudio(scratch)
		reverb.InputSamples(scratch)
		n := reverb.GetAudio(out)
		if n == 0 {
			break
		}
		if err := wavW.WriteFrame(out[:n]); err != nil {
			log.Fatal(err)
		}

		position, _ := player.Position()
		if position != lastPosition {
			fmt.Printf("%d/%d\n", position+1, song.NumUsedPatterns)
			lastPosition = position
		}
	}
	player.Stop()
}
