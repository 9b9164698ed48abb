// Command voxrec records a voice UDP stream into per-speaker audio files.
//
// Usage:
//
//	voxrec record --listen 0.0.0.0:50000 --key <hex> --speaker 1234=80351110224678912
//
// Every flag can also be set as VOXREC_<FLAG> in the environment or in a
// voxrec.yaml config file.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(viper.New()).Execute(); err != nil {
		logrus.WithError(err).Error("voxrec failed")
		os.Exit(1)
	}
}
