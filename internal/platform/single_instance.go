package platform

import (
	"bufio"
	"errors"
	"fmt"
	"hash/fnv"
	"net"
	"time"
)

// ErrAlreadyRunning indicates another instance already holds the lock.
var ErrAlreadyRunning = errors.New("instance already running")

const (
	minGuardPort = 20000
	maxGuardPort = 39999

	activateRequest = "activate\n"
	activateTimeout = time.Second
)

// InstanceGuard holds the single-instance lock and receives activation
// requests from later launches.
type InstanceGuard struct {
	listener net.Listener
}

// AcquireSingleInstance binds a loopback port derived from appName. When the
// port is taken, the running instance is asked to come to the front and
// ErrAlreadyRunning is returned.
func AcquireSingleInstance(appName string) (*InstanceGuard, error) {
	address := fmt.Sprintf("127.0.0.1:%d", portFromName(appName))
	listener, err := net.Listen("tcp", address)
	if err != nil {
		if activateErr := requestActivation(address); activateErr != nil {
			return nil, fmt.Errorf("%w: %s is taken: %v", ErrAlreadyRunning, address, activateErr)
		}
		return nil, fmt.Errorf("%w: activated instance on %s", ErrAlreadyRunning, address)
	}
	return &InstanceGuard{listener: listener}, nil
}

// Serve calls onActivate for every activation request until the guard is
// released. onActivate runs on the serving goroutine.
func (guard *InstanceGuard) Serve(onActivate func()) error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	for {
		conn, err := guard.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("accept activation: %w", err)
		}
		if readActivation(conn) && onActivate != nil {
			onActivate()
		}
	}
}

// Release frees the single instance lock.
func (guard *InstanceGuard) Release() error {
	if guard == nil || guard.listener == nil {
		return nil
	}
	return guard.listener.Close()
}

// Address returns the bound address.
func (guard *InstanceGuard) Address() string {
	if guard == nil || guard.listener == nil {
		return ""
	}
	return guard.listener.Addr().String()
}

func readActivation(conn net.Conn) bool {
	defer conn.Close()
	_ = conn.SetReadDeadline(time.Now().Add(activateTimeout))
	line, err := bufio.NewReader(conn).ReadString('\n')
	return err == nil && line == activateRequest
}

func requestActivation(address string) error {
	conn, err := net.DialTimeout("tcp", address, activateTimeout)
	if err != nil {
		return fmt.Errorf("dial running instance: %w", err)
	}
	defer conn.Close()
	_ = conn.SetWriteDeadline(time.Now().Add(activateTimeout))
	if _, err := conn.Write([]byte(activateRequest)); err != nil {
		return fmt.Errorf("send activation: %w", err)
	}
	return nil
}

func portFromName(appName string) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(appName))
	rangeSize := maxGuardPort - minGuardPort + 1
	return minGuardPort + int(hash.Sum32()%uint32(rangeSize))
}
