package util

import (
	"bufio"
	"fmt"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var ctrlListeners = make(map[string]*CtrlListener)
var ctrlMutex sync.Mutex

// CtrlListener accepts line-oriented commands on a unix socket and dispatches each line to the callbacks
// registered for its first token. Every command is answered with "ok", "error (...)" or "syntax error?".
//
type CtrlListener struct {
	key       string
	listener  net.Listener
	lock      sync.Mutex
	callbacks map[string][]func(string) error
	running   bool
	closed    bool
}

// GetCtrlListener returns the listener for root/id, creating the "<id>.<pid>.sock" socket on first use.
//
func GetCtrlListener(root, id string) (cl *CtrlListener, err error) {
	ctrlMutex.Lock()
	defer ctrlMutex.Unlock()

	key := filepath.Join(root, id)
	cl, found := ctrlListeners[key]
	if found {
		return cl, nil
	}

	if err := os.MkdirAll(root, os.ModePerm); err != nil {
		return nil, errors.Wrapf(err, "error creating ctrl root [%s]", root)
	}
	cl = &CtrlListener{key: key, callbacks: make(map[string][]func(string) error)}
	address := filepath.Join(root, fmt.Sprintf("%s.%d.sock", id, os.Getpid()))
	unixAddress, err := net.ResolveUnixAddr("unix", address)
	if err != nil {
		return nil, errors.Wrap(err, "error resolving unix address")
	}
	cl.listener, err = net.ListenUnix("unix", unixAddress)
	if err != nil {
		return nil, errors.Wrap(err, "error listening")
	}
	ctrlListeners[key] = cl
	return cl, nil
}

func (self *CtrlListener) Addr() string {
	return self.listener.Addr().String()
}

func (self *CtrlListener) AddCallback(keyword string, f func(string) error) {
	self.lock.Lock()
	defer self.lock.Unlock()
	self.callbacks[keyword] = append(self.callbacks[keyword], f)
}

func (self *CtrlListener) Start() {
	self.lock.Lock()
	defer self.lock.Unlock()

	if !self.running {
		self.running = true
		go self.run()
	}
}

// Close stops accepting commands, removes the socket and forgets the listener.
//
func (self *CtrlListener) Close() error {
	ctrlMutex.Lock()
	delete(ctrlListeners, self.key)
	ctrlMutex.Unlock()

	self.lock.Lock()
	self.closed = true
	self.lock.Unlock()
	return self.listener.Close()
}

func (self *CtrlListener) run() {
	logrus.Infof("[%s] started", self.listener.Addr())
	defer logrus.Infof("[%s] exited", self.listener.Addr())

	for {
		conn, err := self.listener.Accept()
		if err != nil {
			self.lock.Lock()
			closed := self.closed
			self.lock.Unlock()
			if closed {
				return
			}
			logrus.Errorf("error accepting ctrl connection (%v)", err)
			continue
		}
		go self.handle(conn)
	}
}

func (self *CtrlListener) handle(conn net.Conn) {
	logrus.Debugf("new connection for [%s]", conn.LocalAddr())
	defer logrus.Debugf("ended connection for [%s]", conn.LocalAddr())
	defer func() { _ = conn.Close() }()

	r := bufio.NewReader(conn)
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		logrus.Errorf("error reading (%v)", err)
		return
	}
	self.respond(conn, self.dispatch(strings.TrimSpace(line)))
}

func (self *CtrlListener) dispatch(line string) string {
	tokens := strings.Fields(line)
	if len(tokens) < 1 {
		logrus.Errorf("no tokens")
		return "syntax error?\n"
	}

	self.lock.Lock()
	fs, found := self.callbacks[tokens[0]]
	self.lock.Unlock()
	if !found {
		logrus.Errorf("no callback for [%s]", line)
		return "syntax error?\n"
	}

	for _, f := range fs {
		if err := f(line); err != nil {
			logrus.Errorf("error executing callback (%v)", err)
			return fmt.Sprintf("error (%s)\n", err)
		}
	}
	return "ok\n"
}

func (self *CtrlListener) respond(conn net.Conn, response string) {
	if _, err := conn.Write([]byte(response)); err != nil {
		logrus.Errorf("error responding (%v)", err)
	}
}
