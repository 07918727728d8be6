package main

import (
	"flag"
	"log"
	"math/rand"
	"time"

	"github.com/digitml/mnistserve/internal/mnist"
	"github.com/digitml/mnistserve/internal/model"
	"github.com/digitml/mnistserve/internal/nn"
	"github.com/digitml/mnistserve/internal/optim"
)

func main() {
	var (
		dataDir   = flag.String("data", "./data", "Directory containing the uncompressed MNIST IDX files")
		outPath   = flag.String("out", "models/mnist_net.gob", "Where to write the trained weights")
		epochs    = flag.Int("epochs", 5, "Number of training epochs")
		batchSize = flag.Int("batch", 64, "Batch size")
		lr        = flag.Float64("lr", 0.001, "Adam learning rate")
		limit     = flag.Int("limit", 0, "Max samples per split (0 = all)")
		seed      = flag.Int64("seed", 0, "Shuffle seed (0 = time-based)")
	)
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	log.Printf("Loading MNIST data from: %s", *dataDir)
	trainSet, err := mnist.Load(*dataDir, true, *limit)
	if err != nil {
		log.Fatalf("Failed to load training set: %v", err)
	}
	testSet, err := mnist.Load(*dataDir, false, *limit)
	if err != nil {
		log.Fatalf("Failed to load test set: %v", err)
	}
	log.Printf("Train: %d samples, Test: %d samples", trainSet.Len(), testSet.Len())

	net := model.NewNet()
	log.Printf("Model has %d trainable parameters", net.NumParameters())

	optimizer := optim.NewAdam(net.Parameters(), optim.AdamConfig{LR: float32(*lr)})

	for epoch := 1; epoch <= *epochs; epoch++ {
		trainLoss, trainAcc := trainOneEpoch(net, trainSet, optimizer, *batchSize, rng)
		testLoss, testAcc := evaluate(net, testSet, *batchSize)
		log.Printf("Epoch %d/%d - train_loss: %.4f, train_acc: %.4f - test_loss: %.4f, test_acc: %.4f",
			epoch, *epochs, trainLoss, trainAcc, testLoss, testAcc)
	}

	if err := model.SaveCheckpoint(*outPath, net); err != nil {
		log.Fatalf("Failed to save weights: %v", err)
	}
	log.Printf("Saved model to %s", *outPath)
}

func trainOneEpoch(net *model.Net, ds *mnist.Dataset, optimizer *optim.Adam, batchSize int, rng *rand.Rand) (loss, acc float32) {
	ds.Shuffle(rng)

	var totalLoss float64
	var totalCorrect, total int
	for start := 0; start < ds.Len(); start += batchSize {
		images, labels := ds.Batch(start, batchSize)

		optimizer.ZeroGrad()
		logits := net.Forward(images)
		batchLoss, grad := nn.SoftmaxCrossEntropy(logits, labels)
		net.Backward(grad)
		optimizer.Step()

		n := len(labels)
		totalLoss += float64(batchLoss) * float64(n)
		totalCorrect += countCorrect(logits, labels)
		total += n
	}
	return float32(totalLoss / float64(total)), float32(totalCorrect) / float32(total)
}

func evaluate(net *model.Net, ds *mnist.Dataset, batchSize int) (loss, acc float32) {
	var totalLoss float64
	var totalCorrect, total int
	for start := 0; start < ds.Len(); start += batchSize {
		images, labels := ds.Batch(start, batchSize)

		logits := net.Forward(images)
		batchLoss, _ := nn.SoftmaxCrossEntropy(logits, labels)

		n := len(labels)
		totalLoss += float64(batchLoss) * float64(n)
		totalCorrect += countCorrect(logits, labels)
		total += n
	}
	return float32(totalLoss / float64(total)), float32(totalCorrect) / float32(total)
}

func countCorrect(logits *nn.Tensor, labels []int) int {
	classes := logits.Shape[1]
	correct := 0
	for i, label := range labels {
		if nn.Argmax(logits.Data[i*classes:(i+1)*classes]) == label {
			correct++
		}
	}
	return correct
}
