package main

import (
	"flag"
	"os"
	"strings"

	"github.com/golang/glog"
	"github.com/golang/protobuf/proto"

	"github.com/robotalks/bfio.go/pkg/bridge/mqtt"
	"github.com/robotalks/bfio.go/pkg/bridge/msgs"
)

var (
	mqttURL = "mqtt://localhost:1883/bfio/"
	target  string
	gateID  uint
	values  string
)

func init() {
	if val := os.Getenv("BFIO_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&target, "device", target, "Device name to send a gate command to.")
	flag.UintVar(&gateID, "gate", gateID, "Gate ID of the command.")
	flag.StringVar(&values, "values", values, "Comma separated values of the command.")
}

func decode(topic string, payload []byte) (proto.Message, error) {
	var m proto.Message
	switch topic[strings.LastIndex(topic, "/")+1:] {
	case msgs.TopicLink:
		m = &msgs.LinkStatus{}
	case msgs.TopicGate:
		m = &msgs.GateEvent{}
	case msgs.TopicCmd:
		m = &msgs.GateCommand{}
	case msgs.TopicReply:
		m = &msgs.GateReply{}
	default:
		return nil, nil
	}
	return m, msgs.Decode(payload, m)
}

func main() {
	flag.Parse()

	opts, prefix, err := mqtt.ClientOptionsFromURL(mqttURL)
	if err != nil {
		glog.Fatal(err)
	}
	q := mqtt.NewQueue(opts, prefix)
	q.Sub("#", func(topic string, payload []byte) {
		m, err := decode(topic, payload)
		switch {
		case err != nil:
			glog.Warningf("%s: bad message: %v", topic, err)
		case m != nil:
			glog.Infof("%s: %s", topic, m.String())
		}
	})
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		glog.Fatal(token.Error())
	}
	if target != "" {
		cmd := &msgs.GateCommand{RequestID: 1, GateID: uint32(gateID)}
		if values != "" {
			cmd.Values = strings.Split(values, ",")
		}
		payload, err := msgs.Encode(cmd)
		if err != nil {
			glog.Fatal(err)
		}
		q.Pub(target+"/"+msgs.TopicCmd, payload).Wait()
	}
	<-(chan struct{})(nil)
}
