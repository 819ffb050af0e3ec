package workers

import (
	"context"
	"fmt"

	"github.com/incognitochain/merklemine-workers/utils"
	"github.com/sirupsen/logrus"
)

type WorkerAbs struct {
	ID        int
	Name      string
	Frequency int // in sec, 0 runs once
	Quit      chan bool
	Fatal     chan error
	Network   string // mainnet, goerli, ...
	Logger    *logrus.Entry
	Notifier  *utils.SlackNotifier
}

type Worker interface {
	Execute(ctx context.Context)
	GetName() string
	GetFrequency() int
	GetQuitChan() chan bool
	GetFatalChan() chan error
	GetNetwork() string
}

func (a *WorkerAbs) Init(id int, name string, freq int, network string, notifier *utils.SlackNotifier) error {
	a.ID = id
	a.Name = name
	a.Frequency = freq
	a.Network = network
	a.Quit = make(chan bool, 1)
	a.Fatal = make(chan error, 1)
	a.Notifier = notifier
	a.Logger = logrus.WithFields(logrus.Fields{
		"worker":  name,
		"network": network,
	})
	return nil
}

func (a *WorkerAbs) Execute(ctx context.Context) {
	fmt.Println("Abstract worker is executing...")
}

func (a *WorkerAbs) GetName() string {
	return a.Name
}

func (a *WorkerAbs) GetFrequency() int {
	return a.Frequency
}

func (a *WorkerAbs) GetQuitChan() chan bool {
	return a.Quit
}

func (a *WorkerAbs) GetFatalChan() chan error {
	return a.Fatal
}

func (a *WorkerAbs) GetNetwork() string {
	return a.Network
}

func (a *WorkerAbs) ExportErrorLog(msg string) {
	a.Logger.Error(msg)
	if err := a.Notifier.SendSlackNotification(msg, utils.AlertNotification); err != nil {
		a.Logger.Warnf("Could not send slack alert - with err: %v", err)
	}
}

func (a *WorkerAbs) ExportInfoLog(msg string) {
	a.Logger.Info(msg)
	if err := a.Notifier.SendSlackNotification(msg, utils.InfoNotification); err != nil {
		a.Logger.Warnf("Could not send slack info - with err: %v", err)
	}
}

// reportFatal hands err to whoever runs the worker; only the first fatal error is kept
func (a *WorkerAbs) reportFatal(err error) {
	select {
	case a.Fatal <- err:
	default:
	}
}
