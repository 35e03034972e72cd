package quicgram

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"net"
	"testing"
	"time"

	"github.com/quic-go/quic-go"
	"github.com/stretchr/testify/require"

	"github.com/brickmesh/gram"
	"github.com/brickmesh/gram/pkg/codec"
)

func generateKeyPair(t *testing.T) *ecdsa.PrivateKey {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate private key: %s", err)
		return nil
	}
	return key
}

func generateCa(t *testing.T, pkey *ecdsa.PrivateKey) []byte {
	t.Helper()
	notBefore := time.Now()
	notAfter := time.Now().Add(1 * time.Hour)

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		t.Fatalf("failed to generate serialNumber: %s", err)
	}
	tmpl := x509.Certificate{
		Subject: pkix.Name{
			CommonName: "self-signed",
		},
		SerialNumber:          serialNumber,
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign,
		BasicConstraintsValid: true,
		IPAddresses: []net.IP{
			{127, 0, 0, 1},
		},
		IsCA: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &pkey.PublicKey, pkey)
	if err != nil {
		t.Fatalf("failed to generate CA: %s", err)
		return nil
	}
	return certDER
}

func generateLeaf(t *testing.T, ca *x509.Certificate, caKP, leafKP *ecdsa.PrivateKey, cn string) []byte {
	t.Helper()
	notBefore := time.Now()
	notAfter := time.Now().Add(1 * time.Hour)

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		t.Fatalf("failed to generate serialNumber: %s", err)
	}
	tmpl := x509.Certificate{
		Subject: pkix.Name{
			CommonName: cn,
		},
		SerialNumber: serialNumber,
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		IPAddresses: []net.IP{
			{127, 0, 0, 1},
		},
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
		IsCA:                  false,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &tmpl, ca, &leafKP.PublicKey, caKP)
	if err != nil {
		t.Fatalf("failed to generate leaf: %s", err)
		return nil
	}
	return certDER
}

func tlsConfigs(t *testing.T) (server, client *tls.Config) {
	t.Helper()
	caKey := generateKeyPair(t)
	serverKey := generateKeyPair(t)
	clientKey := generateKeyPair(t)

	caDER := generateCa(t, caKey)
	ca, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	serverDER := generateLeaf(t, ca, caKey, serverKey, "server")
	serverLeaf, err := x509.ParseCertificate(serverDER)
	require.NoError(t, err)

	clientDER := generateLeaf(t, ca, caKey, clientKey, "client")
	clientLeaf, err := x509.ParseCertificate(clientDER)
	require.NoError(t, err)

	caPool := x509.NewCertPool()
	caPool.AddCert(ca)

	server = &tls.Config{
		Certificates: []tls.Certificate{
			{
				Certificate: [][]byte{serverDER},
				Leaf:        serverLeaf,
				PrivateKey:  serverKey,
			},
		},
		ClientAuth: tls.RequireAndVerifyClientCert,
		ClientCAs:  caPool,
		RootCAs:    caPool,
		NextProtos: []string{"gram-test"},
	}

	client = &tls.Config{
		Certificates: []tls.Certificate{
			{
				Certificate: [][]byte{clientDER},
				Leaf:        clientLeaf,
				PrivateKey:  clientKey,
			},
		},
		ClientAuth: tls.RequireAndVerifyClientCert,
		ClientCAs:  caPool,
		RootCAs:    caPool,
		NextProtos: []string{"gram-test"},
	}
	return server, client
}

func datagramPair(t *testing.T) (server, client quic.Connection) {
	t.Helper()
	serverTLS, clientTLS := tlsConfigs(t)
	quicConf := &quic.Config{EnableDatagrams: true}

	serverUDP, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	serverTr := &quic.Transport{Conn: serverUDP}
	ln, err := serverTr.Listen(serverTLS, quicConf)
	require.NoError(t, err)

	clientUDP, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	clientTr := &quic.Transport{Conn: clientUDP}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err = clientTr.Dial(ctx, ln.Addr(), clientTLS, quicConf)
	require.NoError(t, err)
	server, err = ln.Accept(ctx)
	require.NoError(t, err)

	t.Cleanup(func() {
		client.CloseWithError(0, "test over")
		server.CloseWithError(0, "test over")
		ln.Close()
		serverTr.Close()
		clientTr.Close()
		serverUDP.Close()
		clientUDP.Close()
	})
	return server, client
}

func TestConn_FramedRoundTrip(t *testing.T) {
	serverCx, clientCx := datagramPair(t)

	tx, err := gram.New[gram.Message[[]byte], gram.Message[[]byte]](
		Wrap(clientCx), codec.Raw(), gram.WithMetricSink(nil))
	require.NoError(t, err)
	rx, err := gram.New[gram.Message[[]byte], gram.Message[[]byte]](
		Wrap(serverCx), codec.Raw(), gram.WithMetricSink(nil))
	require.NoError(t, err)

	got := make(chan gram.Message[[]byte], 1)
	go func() {
		msg, err := rx.Recv()
		if err == nil {
			got <- msg
		}
	}()

	// QUIC datagrams are unreliable even on loopback; resend until one
	// makes it through
	var received gram.Message[[]byte]
	require.Eventually(t, func() bool {
		if err := tx.Send(gram.Message[[]byte]{Body: []byte("ping")}); err != nil {
			return false
		}
		if err := tx.Flush(); err != nil {
			return false
		}
		select {
		case received = <-got:
			return true
		default:
			return false
		}
	}, 10*time.Second, 100*time.Millisecond)

	require.Equal(t, "ping", string(received.Body))
	require.Equal(t, clientCx.LocalAddr().String(), received.Addr.String())
}

func TestConn_OversizedDatagramFailsAtSendBoundary(t *testing.T) {
	_, clientCx := datagramPair(t)

	tx, err := gram.New[gram.Message[[]byte], gram.Message[[]byte]](
		Wrap(clientCx), codec.Raw(), gram.WithMetricSink(nil))
	require.NoError(t, err)

	// far above any path MTU a QUIC datagram frame can carry
	huge := make([]byte, 64<<10)
	require.NoError(t, tx.Send(gram.Message[[]byte]{Body: huge}))

	err = tx.Flush()
	require.Error(t, err)
	var tooLarge *quic.DatagramTooLargeError
	require.ErrorAs(t, err, &tooLarge)
}
