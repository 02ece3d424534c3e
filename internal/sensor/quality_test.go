package sensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPHBoundaries(t *testing.T) {
	assert.Equal(t, Buena, Classify(PH, Float(6.5)))
	assert.Equal(t, Buena, Classify(PH, Float(8.5)))
	assert.Equal(t, Regular, Classify(PH, Float(6.49)))
	assert.Equal(t, Regular, Classify(PH, Float(8.51)))
	assert.Equal(t, Mala, Classify(PH, Float(5.9)))
	assert.Equal(t, Mala, Classify(PH, Float(9.1)))
}

func TestClassifyUnknownForInvalidValues(t *testing.T) {
	assert.Equal(t, Desconocida, Classify(PH, nil))
	assert.Equal(t, Desconocida, Classify(PH, Float(math.NaN())))
	assert.Equal(t, Desconocida, Classify(PH, Float(math.Inf(1))))
	assert.Equal(t, Desconocida, Classify(Key("humedad"), Float(50)))
}

func TestClassifyORP(t *testing.T) {
	assert.Equal(t, Buena, Classify(ORP, Float(301)))
	assert.Equal(t, Regular, Classify(ORP, Float(300)))
	assert.Equal(t, Regular, Classify(ORP, Float(100)))
	assert.Equal(t, Mala, Classify(ORP, Float(99.9)))
}

func TestClassifyTurbidez(t *testing.T) {
	assert.Equal(t, Buena, Classify(Turbidez, Float(0.5)))
	assert.Equal(t, Regular, Classify(Turbidez, Float(1)))
	assert.Equal(t, Regular, Classify(Turbidez, Float(5)))
	assert.Equal(t, Mala, Classify(Turbidez, Float(5.1)))
}

func TestClassifyConductividad(t *testing.T) {
	assert.Equal(t, Buena, Classify(Conductividad, Float(499)))
	assert.Equal(t, Regular, Classify(Conductividad, Float(500)))
	assert.Equal(t, Regular, Classify(Conductividad, Float(1000)))
	assert.Equal(t, Mala, Classify(Conductividad, Float(1001)))
}

func TestClassifyTemperatura(t *testing.T) {
	assert.Equal(t, Buena, Classify(Temperatura, Float(15)))
	assert.Equal(t, Buena, Classify(Temperatura, Float(30)))
	assert.Equal(t, Regular, Classify(Temperatura, Float(10)))
	assert.Equal(t, Regular, Classify(Temperatura, Float(14.9)))
	assert.Equal(t, Regular, Classify(Temperatura, Float(35)))
	assert.Equal(t, Mala, Classify(Temperatura, Float(9.9)))
	assert.Equal(t, Mala, Classify(Temperatura, Float(35.1)))
}

func TestClassifyTDS(t *testing.T) {
	assert.Equal(t, Buena, Classify(TDS, Float(0)))
	assert.Equal(t, Regular, Classify(TDS, Float(750)))
	assert.Equal(t, Mala, Classify(TDS, Float(1200)))
}
