package server

import (
	"bufio"
	"bytes"
	"errors"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/daniil11ru/its/libs/its"
	log "github.com/sirupsen/logrus"
)

const (
	maxSentenceLen = 1024
	replyQueueLen  = 16
)

var now = time.Now

var errReplyQueueFull = errors.New("очередь ответов переполнена")

// PositionSaver принимает разобранные позиции
type PositionSaver interface {
	Save(*its.Position) error
}

type Server struct {
	addr      string
	ttl       time.Duration
	whiteList []string
	decoder   *its.Decoder
	saver     PositionSaver

	mu sync.Mutex
	l  net.Listener
}

func New(srvAddress string, ttl time.Duration, whiteList []string, decoder *its.Decoder, saver PositionSaver) *Server {
	return &Server{
		addr:      srvAddress,
		ttl:       ttl,
		whiteList: whiteList,
		decoder:   decoder,
		saver:     saver,
	}
}

func (s *Server) Run() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Serve принимает соединения, пока слушатель не будет закрыт
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.l = l
	s.mu.Unlock()
	defer l.Close()

	log.Infof("Запущен сервер %s", l.Addr())
	log.Debug("TTL: ", s.ttl)
	for {
		conn, err := l.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.WithField("err", err).Errorf("Ошибка соединения")
			continue
		}
		go s.handleConn(conn)
	}
}

func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.l != nil {
		return s.l.Close()
	}

	return nil
}

// replyWriter неблокирующая очередь ответов терминалу
type replyWriter struct {
	ch chan []byte
}

func (w *replyWriter) Write(p []byte) (int, error) {
	buf := append([]byte(nil), p...)
	select {
	case w.ch <- buf:
		return len(p), nil
	default:
		return 0, errReplyQueueFull
	}
}

func writeReplies(conn net.Conn, ch <-chan []byte, done chan<- struct{}) {
	defer close(done)
	for reply := range ch {
		if _, err := conn.Write(reply); err != nil {
			log.WithField("ip", conn.RemoteAddr()).Warnf("Не удалось отправить ответ: %v", err)
		}
	}
}

// splitSentences делит поток на сообщения по '*', '\r' и '\n'
func splitSentences(data []byte, atEOF bool) (int, []byte, error) {
	if i := bytes.IndexAny(data, "*\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF && len(data) > 0 {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()

	if len(s.whiteList) > 0 && !isInWhiteList(remoteIP(conn.RemoteAddr()), s.whiteList) {
		log.WithField("ip", conn.RemoteAddr()).Warn("Адрес не входит в белый список, соединение закрыто")
		return
	}

	log.WithField("ip", conn.RemoteAddr()).Info("Установлено соединение")

	replies := &replyWriter{ch: make(chan []byte, replyQueueLen)}
	repliesDone := make(chan struct{})
	go writeReplies(conn, replies.ch, repliesDone)
	defer func() {
		close(replies.ch)
		<-repliesDone
	}()

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 256), maxSentenceLen)
	scanner.Split(splitSentences)

	for {
		if s.ttl > 0 {
			_ = conn.SetReadDeadline(now().Add(s.ttl))
		} else {
			_ = conn.SetReadDeadline(time.Time{})
		}

		if !scanner.Scan() {
			err := scanner.Err()
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				log.WithField("ip", conn.RemoteAddr()).Warn("Таймаут чтения")
			} else if err == nil {
				log.WithField("ip", conn.RemoteAddr()).Info("Клиент закрыл соединение")
			} else {
				log.WithField("err", err).Error("Ошибка при получении")
			}
			return
		}

		sentence := strings.TrimSpace(scanner.Text())
		if sentence == "" {
			continue
		}
		s.handleSentence(conn, replies, sentence)
	}
}

func (s *Server) handleSentence(conn net.Conn, replies *replyWriter, sentence string) {
	log.WithField("sentence", sentence).Debug("Принято сообщение")

	position, err := s.decoder.Decode(replies, conn.RemoteAddr(), sentence)
	switch {
	case errors.Is(err, its.ErrNoMatch):
		log.WithField("ip", conn.RemoteAddr()).Debug("Сообщение не соответствует формату ITS")
		return
	case errors.Is(err, its.ErrUnknownDevice):
		log.WithField("ip", conn.RemoteAddr()).Debug("Сообщение от неизвестного устройства пропущено")
		return
	case err != nil:
		log.WithFields(log.Fields{"ip": conn.RemoteAddr(), "sentence": sentence}).Errorf("Ошибка расшифровки сообщения: %v", err)
		return
	}

	position.ServerTime = now().UTC()
	if err := s.saver.Save(position); err != nil {
		log.Warnf("Телематические данные не были сохранены: %v", err)
	}
}

func remoteIP(addr net.Addr) string {
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.IP.String()
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		return addr.String()
	}
	return host
}

// isInWhiteList допускает точное совпадение или шаблон вида "192.168.*",
// где звёздочка стоит только в конце
func isInWhiteList(ip string, whiteList []string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil || parsed.To4() == nil {
		return false
	}

	for _, pattern := range whiteList {
		if !strings.Contains(pattern, "*") {
			if pattern == ip {
				return true
			}
			continue
		}
		if strings.Count(pattern, "*") != 1 || !strings.HasSuffix(pattern, ".*") {
			continue
		}
		if strings.HasPrefix(ip, strings.TrimSuffix(pattern, "*")) {
			return true
		}
	}
	return false
}
