// Package ipc 通过 unix socket 广播当前歌词，供状态栏和悬浮窗跟随回放
package ipc

import (
	"errors"
	"net"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Server 把每次广播的歌词发给所有已连接的客户端，新客户端连接时先收到最近一行
type Server struct {
	socketPath string
	listener   net.Listener
	logger     zerolog.Logger

	mu      sync.Mutex
	clients map[net.Conn]struct{}
	current string
	closed  bool
	wg      sync.WaitGroup
}

func NewServer(socketPath string) *Server {
	return &Server{
		socketPath: socketPath,
		clients:    make(map[net.Conn]struct{}),
		logger:     log.With().Str("component", "ipc").Logger(),
	}
}

// Start 清理旧的 socket 文件，开始监听并在后台接受连接
func (s *Server) Start() error {
	if err := os.RemoveAll(s.socketPath); err != nil {
		return err
	}
	listener, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return err
	}
	s.listener = listener
	s.logger.Info().Str("socket_path", s.socketPath).Msg("IPC server listening")

	s.wg.Add(1)
	go s.acceptConnections()
	return nil
}

func (s *Server) acceptConnections() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			s.logger.Error().Err(err).Msg("Failed to accept IPC connection")
			continue
		}
		s.wg.Add(1)
		go s.handleConnection(conn)
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer s.wg.Done()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		conn.Close()
		return
	}
	s.clients[conn] = struct{}{}
	current := s.current
	if current != "" {
		if _, err := conn.Write([]byte(current + "\n")); err != nil {
			s.logger.Error().Err(err).Msg("Failed to send current line")
		}
	}
	s.mu.Unlock()
	s.logger.Info().Msg("Client connected")

	// 客户端不会发送数据，读出错即表示已断开
	buf := make([]byte, 1)
	for {
		if _, err := conn.Read(buf); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, conn)
	s.mu.Unlock()
	conn.Close()
	s.logger.Info().Msg("Client disconnected")
}

// Broadcast 记录当前歌词并写给所有客户端，写失败的客户端会被移除
func (s *Server) Broadcast(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = line

	payload := []byte(line + "\n")
	for conn := range s.clients {
		if _, err := conn.Write(payload); err != nil {
			s.logger.Error().Err(err).Msg("Failed to write to client, removing")
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

// Clients 返回当前连接的客户端数量
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Close 停止监听，断开所有客户端并删除 socket 文件
func (s *Server) Close() error {
	s.mu.Lock()
	s.closed = true
	for conn := range s.clients {
		conn.Close()
	}
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	s.wg.Wait()
	os.Remove(s.socketPath)
	return err
}
