package k8s

import (
	"context"
	"fmt"
	"io"

	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"

	"github.com/helmcode/logai/pkg/logtext"
)

type Client struct {
	clientset kubernetes.Interface
}

// NewClient creates a new Kubernetes client. In-cluster configuration wins;
// otherwise kubeconfig is used with kubeContext overriding current-context.
func NewClient(kubeconfig, kubeContext string) (*Client, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		rules := &clientcmd.ClientConfigLoadingRules{ExplicitPath: kubeconfig}
		overrides := &clientcmd.ConfigOverrides{CurrentContext: kubeContext}
		config, err = clientcmd.NewNonInteractiveDeferredLoadingClientConfig(rules, overrides).ClientConfig()
		if err != nil {
			return nil, fmt.Errorf("failed to create config: %w", err)
		}
	}

	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create clientset: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewClientFromInterface wraps an existing clientset.
func NewClientFromInterface(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// LogOptions selects which pod logs to read.
type LogOptions struct {
	Namespace    string
	Pod          string
	Container    string
	TailLines    int64
	SinceSeconds int64
	Previous     bool
	// LimitBytes caps how much is read; zero means no cap.
	LimitBytes int64
}

// FetchPodLogs returns the logs of one pod container.
func (c *Client) FetchPodLogs(ctx context.Context, opts LogOptions) (string, error) {
	if opts.Pod == "" {
		return "", fmt.Errorf("pod name is required")
	}
	namespace := opts.Namespace
	if namespace == "" {
		namespace = metav1.NamespaceDefault
	}

	podLogOpts := &corev1.PodLogOptions{
		Container: opts.Container,
		Previous:  opts.Previous,
	}
	if opts.TailLines > 0 {
		podLogOpts.TailLines = &opts.TailLines
	}
	if opts.SinceSeconds > 0 {
		podLogOpts.SinceSeconds = &opts.SinceSeconds
	}
	if opts.LimitBytes > 0 {
		podLogOpts.LimitBytes = &opts.LimitBytes
	}

	stream, err := c.clientset.CoreV1().Pods(namespace).GetLogs(opts.Pod, podLogOpts).Stream(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get logs for pod %s/%s: %w", namespace, opts.Pod, err)
	}
	defer stream.Close()

	logs, err := io.ReadAll(stream)
	if err != nil {
		return "", fmt.Errorf("failed to read logs: %w", err)
	}
	return logtext.Decode(logs), nil
}

// ContainerNames lists the containers of a pod, for picking one when the
// pod has several.
func (c *Client) ContainerNames(ctx context.Context, namespace, pod string) ([]string, error) {
	p, err := c.clientset.CoreV1().Pods(namespace).Get(ctx, pod, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get pod %s: %w", pod, err)
	}
	names := make([]string, 0, len(p.Spec.Containers))
	for _, ctr := range p.Spec.Containers {
		names = append(names, ctr.Name)
	}
	return names, nil
}
