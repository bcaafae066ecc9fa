// Command convrnx converts a receiver log into RINEX observation and
// navigation files (and an SBAS message log), following the same option
// surface as RTKLIB's convbin: an input log, a format, a RINEX version
// and header metadata, and up to nine output file templates.
//
// Only the RINEX-input decoder ships built in; production RTCM/raw
// decoders are external collaborators that satisfy decoder.Decoder and
// can be wired in by a caller that embeds this package instead of the
// binary.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mholt/archiver/v3"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/fxgnss/rnxengine/decoder"
	"github.com/fxgnss/rnxengine/internal/gtime"
	"github.com/fxgnss/rnxengine/internal/navroute"
	"github.com/fxgnss/rnxengine/internal/rnxopt"
	"github.com/fxgnss/rnxengine/internal/satsys"
	"github.com/fxgnss/rnxengine/internal/session"

	"github.com/fxgnss/rnxengine/rinexwriter"
)

var sysFlag = map[byte]int{
	'G': satsys.GPS, 'R': satsys.GLO, 'E': satsys.GAL,
	'J': satsys.QZS, 'S': satsys.SBS, 'C': satsys.CMP, 'I': satsys.IRN,
}

func main() {
	log := logrus.New()
	app := &cli.App{
		Name:      "convrnx",
		Usage:     "convert a receiver log to RINEX observation/navigation files",
		UsageText: "convrnx [options] <input>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML options file (see rnxopt.Load)"},
			&cli.StringFlag{Name: "format", Value: "rinex", Usage: "input log format (only \"rinex\" ships built in)"},
			&cli.StringFlag{Name: "ts", Usage: "start time, \"2006/01/02 15:04:05\""},
			&cli.StringFlag{Name: "te", Usage: "end time, \"2006/01/02 15:04:05\""},
			&cli.Float64Flag{Name: "ti", Usage: "observation sampling interval (s)"},
			&cli.Float64Flag{Name: "tt", Value: 0.005, Usage: "observation epoch tolerance (s)"},
			&cli.Float64Flag{Name: "tunit", Usage: "multi-session split unit (s), 0 = single session"},
			&cli.IntFlag{Name: "ver", Value: 304, Usage: "RINEX version (210,211,212,300,301,302,303,304)"},
			&cli.StringFlag{Name: "navsys", Value: "GREJSCI", Usage: "enabled systems, letters from G R E J S C I"},
			&cli.StringFlag{Name: "staid", Usage: "station id"},
			&cli.StringFlag{Name: "marker", Usage: "marker name"},
			&cli.BoolFlag{Name: "halfc", Usage: "half-cycle ambiguity correction"},
			&cli.BoolFlag{Name: "sepnav", Usage: "write separated per-system navigation files"},
			&cli.StringFlag{Name: "rover", Usage: "rover id for %r output-path keyword"},
			&cli.StringFlag{Name: "base", Usage: "base id for %b output-path keyword"},
			&cli.StringFlag{Name: "obs", Usage: "output RINEX OBS file"},
			&cli.StringFlag{Name: "nav", Usage: "output RINEX NAV file"},
			&cli.StringFlag{Name: "gnav", Usage: "output RINEX GNAV file"},
			&cli.StringFlag{Name: "hnav", Usage: "output RINEX HNAV file"},
			&cli.StringFlag{Name: "qnav", Usage: "output RINEX QNAV file"},
			&cli.StringFlag{Name: "lnav", Usage: "output RINEX LNAV file"},
			&cli.StringFlag{Name: "cnav", Usage: "output RINEX CNAV file"},
			&cli.StringFlag{Name: "inav", Usage: "output RINEX INAV file"},
			&cli.StringFlag{Name: "sbaslog", Usage: "output SBAS message log"},
			&cli.BoolFlag{Name: "compress", Usage: "gzip every output file once the run completes"},
		},
		Action: run(log),
	}

	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("convrnx failed")
	}
}

func run(log *logrus.Logger) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < 1 {
			return cli.Exit("convrnx: missing input file", 1)
		}
		input := c.Args().Get(0)
		runID := uuid.New().String()
		entry := log.WithField("run_id", runID)

		opt, err := buildOptions(c)
		if err != nil {
			return fmt.Errorf("convrnx: %w", err)
		}
		if err := opt.Validate(); err != nil {
			return fmt.Errorf("convrnx: %w", err)
		}

		var outputs [navroute.SlotSbasLog + 1]string
		outputs[navroute.SlotObs] = c.String("obs")
		outputs[navroute.SlotNav] = c.String("nav")
		outputs[navroute.SlotGNav] = c.String("gnav")
		outputs[navroute.SlotHNav] = c.String("hnav")
		outputs[navroute.SlotQNav] = c.String("qnav")
		outputs[navroute.SlotLNav] = c.String("lnav")
		outputs[navroute.SlotCNav] = c.String("cnav")
		outputs[navroute.SlotINav] = c.String("inav")
		outputs[navroute.SlotSbasLog] = c.String("sbaslog")

		abortCh := make(chan os.Signal, 1)
		signal.Notify(abortCh, os.Interrupt)
		defer signal.Stop(abortCh)
		aborted := false
		abort := func() bool {
			select {
			case <-abortCh:
				aborted = true
			default:
			}
			return aborted
		}

		driver := session.New(session.Config{
			NewDecoder: func() decoder.Decoder { return decoder.NewRinexFile() },
			NewWriter:  func(path string) (rinexwriter.Writer, error) { return rinexwriter.NewText(path) },
			Input:      input,
			Output:     outputs,
			Opt:        opt,
			Rover:      c.String("rover"),
			Base:       c.String("base"),
			Log:        entry,
			Abort:      abort,
		})

		results, err := driver.Run()
		if err != nil {
			return fmt.Errorf("convrnx: %w", err)
		}
		for i, st := range results {
			entry.WithFields(logrus.Fields{
				"session": i + 1,
				"obs":     st.Counts[navroute.SlotObs],
				"nav":     st.Counts[navroute.SlotNav],
				"events":  st.Events,
			}).Info("session complete")
		}

		if c.Bool("compress") {
			for _, path := range outputs {
				if path == "" {
					continue
				}
				if err := compressFile(path); err != nil {
					entry.WithError(err).WithField("file", path).Warn("compress failed")
				}
			}
		}
		return nil
	}
}

func compressFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	dst := path + ".gz"
	if err := archiver.CompressFile(path, dst); err != nil {
		return err
	}
	return os.Remove(path)
}

func buildOptions(c *cli.Context) (*rnxopt.Options, error) {
	var opt *rnxopt.Options
	if cfg := c.String("config"); cfg != "" {
		o, err := rnxopt.Load(cfg)
		if err != nil {
			return nil, err
		}
		opt = o
	} else {
		opt = rnxopt.Default()
	}

	opt.RnxVer = c.Int("ver")
	if navsys := c.String("navsys"); navsys != "" {
		mask := satsys.None
		for i := 0; i < len(navsys); i++ {
			if m, ok := sysFlag[navsys[i]]; ok {
				mask |= m
			}
		}
		opt.NavSys = mask
	}
	if staid := c.String("staid"); staid != "" {
		opt.StaID = staid
	}
	if opt.StaID == "" {
		opt.StaID = "0000"
	}
	if marker := c.String("marker"); marker != "" {
		opt.Marker = marker
	}
	if ti := c.Float64("ti"); ti > 0 {
		opt.TInt = ti
	}
	if tt := c.Float64("tt"); tt > 0 {
		opt.TTol = tt
	}
	opt.TUnit = c.Float64("tunit")
	opt.HalfCyc = opt.HalfCyc || c.Bool("halfc")
	opt.SepNav = c.Bool("sepnav")

	ts, err := parseTime(c.String("ts"))
	if err != nil {
		return nil, fmt.Errorf("ts: %w", err)
	}
	te, err := parseTime(c.String("te"))
	if err != nil {
		return nil, fmt.Errorf("te: %w", err)
	}
	opt.TS, opt.TE = ts, te

	return opt, nil
}

// parseTime accepts "2006/01/02 15:04:05" (RTKLIB's conventional time
// option format); an empty string means "unset".
func parseTime(s string) (gtime.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return gtime.Time{}, nil
	}
	tt, err := time.Parse("2006/01/02 15:04:05", s)
	if err != nil {
		return gtime.Time{}, err
	}
	ep := [6]float64{
		float64(tt.Year()), float64(tt.Month()), float64(tt.Day()),
		float64(tt.Hour()), float64(tt.Minute()), float64(tt.Second()),
	}
	return gtime.FromEpoch(ep), nil
}
