package main

//go-build: CGO_ENABLED=0

import (
	"flag"

	"github.com/golang/glog"

	"github.com/robotalks/bfio.go/pkg/bfio"
	"github.com/robotalks/bfio.go/pkg/bfio/device"
	"github.com/robotalks/bfio.go/pkg/bfio/runway"
	"github.com/robotalks/bfio.go/pkg/bfio/stream"
	"github.com/robotalks/bfio.go/pkg/bridge/mqtt"
	"github.com/robotalks/bfio.go/pkg/config"
	fx "github.com/robotalks/bfio.go/pkg/framework"
)

func init() {
	config.SetupFlags()
}

func main() {
	flag.Parse()

	conf := config.NewConfig()
	if err := conf.Load(); err != nil {
		glog.Fatal(err)
	}
	if conf.Port == "" {
		glog.Fatal("-port or BFIO_PORT is required")
	}
	port, err := stream.Open(conf.Port)
	if err != nil {
		glog.Fatal(err)
	}
	dev, err := conf.NewDevice(port)
	if err != nil {
		glog.Fatal(err)
	}
	dev.OnLinkStatus(func(s runway.HighwayStatus) {
		glog.V(1).Infof("link %s", s)
	})

	loop := fx.NewLoop()
	loop.Interval = conf.Interval
	loop.Add(dev)
	if conf.MQTTBrokerURL != "" {
		bridge, err := mqtt.New(conf.MQTTBrokerURL, conf.Name, dev)
		if err != nil {
			glog.Fatal(err)
		}
		loop.Add(bridge)
	}

	go handshake(dev, conf)

	glog.Infof("%s (id %d) on %s", conf.Name, conf.ID, conf.Port)
	if err := fx.NewRunner().HandleSignals().Go(loop).Wait(); err != nil {
		glog.Fatal(err)
	}
}

func handshake(dev *device.Device, conf *config.Config) {
	r := dev.Call(device.Transaction{ID: bfio.HandshakeID}, 2*conf.Timeout)
	if r.Err != nil {
		glog.Warningf("handshake: %v", r.Err)
		return
	}
	glog.Infof("handshake: peer speaks BFIO %s", bfio.FormatValue(r.Values[0]))
}
