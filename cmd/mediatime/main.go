// Command mediatime inspects media time strings. Each argument is
// parsed as a time value or a time range and reported in every
// representation the value supports, including unit counts when a
// rate is configured.
//
// Usage:
//
//	mediatime now
//	MEDIATIME_RATE=30000/1001 mediatime 2015-02-17T12:53:48.5Z "[10:0_20:0)"
package main

import (
	"os"
	"strings"

	"github.com/cbsinteractive/mediatime"
	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
)

type Config struct {
	// Rate is the media unit rate used for count conversion, for
	// example "25" or "30000/1001". Empty means no rate.
	Rate string `envconfig:"MEDIATIME_RATE"`

	// UTCOffset is the UTC offset in seconds written into SMPTE
	// timestamp labels.
	UTCOffset int64 `envconfig:"MEDIATIME_UTC_OFFSET"`

	LogLevel string `envconfig:"MEDIATIME_LOG_LEVEL" default:"info"`
}

func main() {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		logrus.Fatal("unable to load configuration: ", err)
	}

	logger := logrus.New()
	logger.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}

	var rate mediatime.Rational
	if cfg.Rate != "" {
		var err error
		rate, err = mediatime.ParseRational(cfg.Rate)
		if err != nil {
			logger.Fatal("unable to parse rate: ", err)
		}
	}

	args := os.Args[1:]
	if len(args) == 0 {
		logger.Fatal("no time strings given")
	}

	code := 0
	for _, arg := range args {
		if err := inspect(logger, cfg, rate, arg); err != nil {
			logger.WithField("input", arg).Error(err)
			code = 1
		}
	}
	os.Exit(code)
}

func inspect(logger *logrus.Logger, cfg Config, rate mediatime.Rational, arg string) error {
	if isRange(arg) {
		return inspectRange(logger, rate, arg)
	}
	return inspectValue(logger, cfg, rate, arg)
}

// isRange distinguishes range syntax from scalar values. ISO 8601
// timestamps never contain '_' or inclusivity brackets, so the range
// markers are unambiguous.
func isRange(s string) bool {
	return strings.ContainsAny(s, "_[]()")
}

func inspectValue(logger *logrus.Logger, cfg Config, rate mediatime.Rational, arg string) error {
	v, err := mediatime.ParseTimeValue(arg, rate)
	if err != nil {
		return err
	}

	fields := logrus.Fields{"input": arg, "value": v.String()}
	if !rate.IsZero() {
		if count, err := v.AsCount(); err == nil {
			fields["count"] = count
		}
	}
	if offset, err := v.AsTimeOffset(); err == nil {
		fields["sec_nsec"] = offset.ToSecNsec()
		fields["sec_frac"] = offset.ToSecFrac()
		fields["nanoseconds"] = offset.Nanoseconds()
	}
	if ts, err := v.AsTimestamp(); err == nil && ts.Sign() > 0 {
		fields["iso8601"] = ts.ToISO8601()
		sec, ns, _, isLeap := ts.ToUnix()
		fields["unix_sec"] = sec
		fields["unix_nsec"] = ns
		if isLeap {
			fields["leap_second"] = true
		}
		if !rate.IsZero() {
			if label, err := ts.ToSMPTELabel(rate, cfg.UTCOffset); err == nil {
				fields["smpte_label"] = label
			}
		}
	}
	logger.WithFields(fields).Info("time value")
	return nil
}

func inspectRange(logger *logrus.Logger, rate mediatime.Rational, arg string) error {
	r, err := mediatime.ParseTimeValueRange(arg, rate)
	if err != nil {
		return err
	}

	fields := logrus.Fields{"input": arg, "range": r.String()}
	if tr, err := r.AsTimeRange(); err == nil {
		fields["sec_nsec_range"] = tr.ToSecNsecRange(true)
		if length, ok := tr.Length(); ok {
			fields["length"] = length.ToSecFrac()
		}
	}
	if !r.Rate().IsZero() {
		if cr, err := r.AsCountRange(); err == nil {
			fields["count_range"] = cr.String()
			if length, ok := cr.Length(); ok {
				fields["length_count"] = length
			}
		}
	}
	logger.WithFields(fields).Info("time range")
	return nil
}
