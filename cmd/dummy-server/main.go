package main

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	httpHelper "github.com/mlservingstack/go-sdk/pkg/api/http"
	"github.com/mlservingstack/go-sdk/pkg/logger"
	"github.com/mlservingstack/go-sdk/pkg/middleware"
	"github.com/mlservingstack/go-sdk/pkg/tensor"
	"github.com/mlservingstack/go-sdk/pkg/types"
)

// Development stand-in for the real serving server. Speaks the same predict,
// healthcheck and shutdown contract and answers every predict call with
// deterministic scores derived from a hash of the inputs, so the same request
// always yields the same response.

var (
	port       = flag.Int("port", 8080, "port to listen on")
	outputName = flag.String("output", "scores", "name of the output tensor")
	numScores  = flag.Int("count", 10, "number of scores per response")
)

func main() {
	flag.Parse()
	logger.InitLogger("dummy-server", "INFO")

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.HTTPRecovery())

	router.GET("/healthcheck", func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	router.POST("/predict", handlePredict)

	router.POST("/shutdown", func(c *gin.Context) {
		c.Status(http.StatusOK)
		go func() {
			time.Sleep(100 * time.Millisecond)
			os.Exit(0)
		}()
	})

	log.Info().Msgf("Dummy serving server listening on :%d", *port)
	if err := router.Run(fmt.Sprintf(":%d", *port)); err != nil {
		log.Fatal().Err(err).Msg("Server exited")
	}
}

func handlePredict(c *gin.Context) {
	contentType := c.GetHeader(httpHelper.HeaderContentType)
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		c.String(http.StatusBadRequest, "bad content type: %v", err)
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.String(http.StatusBadRequest, "failed to read body: %v", err)
		return
	}

	switch mediaType {
	case httpHelper.ContentTypeJSON:
		inputs, err := tensor.DecodeJSON(body)
		if err != nil {
			c.String(http.StatusBadRequest, "bad tensor document: %v", err)
			return
		}
		respondJSON(c, scoresFor(hashTensors(inputs)))
	case httpHelper.ContentTypeMultipart:
		hash, err := hashParts(body, params["boundary"])
		if err != nil {
			c.String(http.StatusBadRequest, "bad multipart body: %v", err)
			return
		}
		respondMultipart(c, scoresFor(hash))
	case httpHelper.ContentTypeArrowStream:
		inputs, err := tensor.DecodeArrow(body)
		if err != nil {
			c.String(http.StatusBadRequest, "bad arrow stream: %v", err)
			return
		}
		respondArrow(c, scoresFor(hashTensors(inputs)))
	default:
		c.String(http.StatusUnsupportedMediaType, "unsupported content type %s", mediaType)
	}
}

func hashTensors(inputs []*tensor.Tensor) uint64 {
	h := sha256.New()
	for _, t := range inputs {
		h.Write([]byte(t.Name))
		if data, err := tensor.EncodeRaw(t); err == nil {
			h.Write(data)
		} else {
			for _, s := range t.Values.StringValues {
				h.Write([]byte(s))
			}
		}
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}

func hashParts(body []byte, boundary string) (uint64, error) {
	h := sha256.New()
	reader := multipart.NewReader(bytes.NewReader(body), boundary)
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, err
		}
		h.Write([]byte(part.FormName()))
		data, err := io.ReadAll(part)
		if err != nil {
			return 0, err
		}
		h.Write(data)
	}
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8]), nil
}

// scoresFor spreads the hash over [0, 1) per element, a prime stride keeps
// neighbouring elements apart.
func scoresFor(hash uint64) *tensor.Tensor {
	scores := make([]float32, *numScores)
	for i := range scores {
		elementHash := hash + uint64(i*7919)
		scores[i] = float32(float64(elementHash) / float64(^uint64(0)))
	}
	return &tensor.Tensor{
		Name:     *outputName,
		DataType: types.DataTypeFP32,
		Shape:    []int64{int64(*numScores)},
		Values:   tensor.Values{Fp32Values: scores},
	}
}

func respondJSON(c *gin.Context, out *tensor.Tensor) {
	body, err := tensor.EncodeJSON([]*tensor.Tensor{out})
	if err != nil {
		c.String(http.StatusInternalServerError, "encode failed: %v", err)
		return
	}
	c.Data(http.StatusOK, httpHelper.ContentTypeJSON, body)
}

func respondMultipart(c *gin.Context, out *tensor.Tensor) {
	data, err := tensor.EncodeRaw(out)
	if err != nil {
		c.String(http.StatusInternalServerError, "encode failed: %v", err)
		return
	}
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile(out.Name, out.Name)
	if err != nil {
		c.String(http.StatusInternalServerError, "encode failed: %v", err)
		return
	}
	if _, err := part.Write(data); err != nil {
		c.String(http.StatusInternalServerError, "encode failed: %v", err)
		return
	}
	if err := writer.Close(); err != nil {
		c.String(http.StatusInternalServerError, "encode failed: %v", err)
		return
	}
	c.Data(http.StatusOK, writer.FormDataContentType(), buf.Bytes())
}

func respondArrow(c *gin.Context, out *tensor.Tensor) {
	body, err := tensor.EncodeArrow([]*tensor.Tensor{out})
	if err != nil {
		c.String(http.StatusInternalServerError, "encode failed: %v", err)
		return
	}
	c.Data(http.StatusOK, httpHelper.ContentTypeArrowStream, body)
}
