package sound

import (
	"fmt"
	"os"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
	"github.com/faiface/beep/wav"
)

// Init starts the playback goroutine and returns the channel used to queue
// WAV files. Playback failures are logged and swallowed; a rig without a
// speaker still runs fine, it just stays quiet.
func Init() chan string {
	queue := make(chan string)
	go playLoop(queue)
	return queue
}

func playLoop(queue chan string) {
	defer func() {
		recover() // The channel may be closed during shutdown.
	}()

	sampleRate := beep.SampleRate(44100)
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/5)); err != nil {
		fmt.Println("Failed to open speaker:", err)
		for path := range queue {
			fmt.Println("Unable to play", path)
		}
		return
	}

	var ctrl *beep.Ctrl
	var current beep.StreamSeekCloser
	for path := range queue {
		// Cut off whatever is still playing before starting the new file.
		if ctrl != nil {
			speaker.Lock()
			ctrl.Paused = true
			ctrl.Streamer = nil
			speaker.Unlock()
			ctrl = nil
		}
		if current != nil {
			current.Close()
			current = nil
		}

		f, err := os.Open(path)
		if err != nil {
			fmt.Println("Failed to open sound", path, ":", err)
			continue
		}
		stream, _, err := wav.Decode(f)
		if err != nil {
			fmt.Println("Failed to decode sound", path, ":", err)
			f.Close()
			continue
		}
		current = stream
		ctrl = &beep.Ctrl{Streamer: stream}
		speaker.Play(ctrl)
	}
}
